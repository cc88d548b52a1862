package confirm_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("confirm_appointment: appointment not found")

	// ErrPermissionDenied возвращается при отсутствии права на подтверждение
	ErrPermissionDenied = errors.New("confirm_appointment: permission denied")

	// ErrInvalidTransition возвращается, когда запись не в статусе pending
	ErrInvalidTransition = errors.New("confirm_appointment: invalid status transition")

	// ErrSlotUnavailable возвращается, когда слот закрыли между созданием и подтверждением
	ErrSlotUnavailable = errors.New("confirm_appointment: slot is closed by configuration")

	// ErrCapacityExceeded возвращается, когда слот переполнен и овербукинг не разрешён
	ErrCapacityExceeded = errors.New("confirm_appointment: slot capacity exceeded")

	// ErrWorkersRequired возвращается, когда у записи нет назначенных сотрудников
	ErrWorkersRequired = errors.New("confirm_appointment: at least one worker must be assigned")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("confirm_appointment: internal error")
)
