package payments

import "errors"

var (
	// ErrInvalidAmount сумма платежа должна быть положительной
	ErrInvalidAmount = errors.New("payments: amount must be positive")

	// ErrIntentNotFound платёжное намерение не найдено у процессора
	ErrIntentNotFound = errors.New("payments: payment intent not found")

	// ErrProcessor ошибка платёжного процессора
	ErrProcessor = errors.New("payments: processor error")
)
