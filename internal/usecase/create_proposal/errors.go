package create_proposal

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках use case
	ErrInternal = errors.New("create_proposal: internal error")
)
