package assign_trip

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrDriverNotFound возвращается, когда водитель не найден
	ErrDriverNotFound = errors.New("driver not found")

	// ErrVehicleNotFound возвращается, когда машина не найдена
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("assign_trip: internal error")
)
