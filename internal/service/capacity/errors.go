package capacity

import "errors"

var (
	// ErrPermissionDenied возвращается, когда у актора нет прав на управление
	// вместимостью салона (включая режим read-only у администраторов платформы)
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("capacity service: internal error")
)
