package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation некорректные входные данные
	ErrValidation = errors.New("validation error")

	// ErrConflict ресурс занят или назначение уже существует
	ErrConflict = errors.New("conflict")

	// ErrInvalidState переход статуса запрещён из текущего состояния
	ErrInvalidState = errors.New("invalid state")

	// ErrCapacity вместимость транспорта меньше размера группы
	ErrCapacity = errors.New("insufficient capacity")
)

// ValidationError ошибка валидации конкретного поля
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ConflictError ресурс (driver, vehicle, booking) недоступен в момент записи
type ConflictError struct {
	Resource   string
	ResourceID int64
	Reason     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s id=%d: %s", ErrConflict, e.Resource, e.ResourceID, e.Reason)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// InvalidStateError запрещённый переход жизненного цикла
type InvalidStateError struct {
	Entity string
	From   string
	To     string
	Reason string
}

func (e *InvalidStateError) Error() string {
	msg := fmt.Sprintf("%s: %s cannot move from %s to %s", ErrInvalidState, e.Entity, e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// CapacityError вместимости не хватает на Deficit мест
type CapacityError struct {
	VehicleID int64
	Capacity  int
	PartySize int
	Deficit   int
}

func NewCapacityError(vehicleID int64, capacity, partySize int) *CapacityError {
	return &CapacityError{
		VehicleID: vehicleID,
		Capacity:  capacity,
		PartySize: partySize,
		Deficit:   partySize - capacity,
	}
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: vehicle id=%d seats %d, party of %d (short by %d)",
		ErrCapacity, e.VehicleID, e.Capacity, e.PartySize, e.Deficit)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacity
}
