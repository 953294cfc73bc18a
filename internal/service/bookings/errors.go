package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrPaymentRefNotFound платёж с указанной ссылкой не найден у процессора
	ErrPaymentRefNotFound = errors.New("payment reference not found")

	// ErrPaymentUnavailable платёжный процессор недоступен или вернул ошибку
	ErrPaymentUnavailable = errors.New("payment processor unavailable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
