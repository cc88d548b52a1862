package occupancy

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках вычисления занятости
	ErrInternal = errors.New("occupancy: internal error")
)
