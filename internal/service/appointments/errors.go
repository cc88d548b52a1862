package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointments service: appointment not found")

	// ErrPermissionDenied возвращается при отсутствии прав на операцию
	ErrPermissionDenied = errors.New("appointments service: permission denied")

	// ErrInvalidTransition возвращается, когда переход недопустим из текущего статуса
	ErrInvalidTransition = errors.New("appointments service: invalid status transition")

	// ErrSlotUnavailable возвращается, когда целевой слот закрыт конфигурацией
	ErrSlotUnavailable = errors.New("appointments service: slot unavailable")

	// ErrWorkerNotInSalon возвращается, когда сотрудник не принадлежит салону
	ErrWorkerNotInSalon = errors.New("appointments service: worker does not belong to salon")

	// ErrServiceNotFound возвращается, когда услуга не найдена в салоне
	ErrServiceNotFound = errors.New("appointments service: service not found in salon")

	// ErrInvalidInput возвращается при ошибке валидации входных данных
	ErrInvalidInput = errors.New("appointments service: invalid input")

	// ErrInternal внутренняя ошибка сервиса
	ErrInternal = errors.New("appointments service: internal error")
)
