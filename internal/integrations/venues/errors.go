package venues

import "errors"

var (
	// ErrVenueNotFound площадка не найдена в справочнике
	ErrVenueNotFound = errors.New("venue not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("venues client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от справочника
	ErrInvalidResponse = errors.New("venues client: invalid response")

	// ErrServiceDegraded справочник недоступен, проверку площадок можно пропустить
	ErrServiceDegraded = errors.New("venue directory unavailable: graceful degradation applied")
)
