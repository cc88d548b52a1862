package create_appointment

import "errors"

var (
	// ErrPermissionDenied возвращается при отсутствии права на создание записи
	ErrPermissionDenied = errors.New("create_appointment: permission denied")

	// ErrSalonNotFound возвращается, когда салон не найден
	ErrSalonNotFound = errors.New("create_appointment: salon not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена в салоне
	ErrServiceNotFound = errors.New("create_appointment: service not found")

	// ErrWorkerNotInSalon возвращается, когда сотрудник не принадлежит салону
	ErrWorkerNotInSalon = errors.New("create_appointment: worker does not belong to salon")

	// ErrSlotUnavailable возвращается, когда слот или весь день закрыт конфигурацией
	ErrSlotUnavailable = errors.New("create_appointment: slot is closed by configuration")

	// ErrCapacityExceeded возвращается, когда слот заполнен и овербукинг не разрешён
	ErrCapacityExceeded = errors.New("create_appointment: slot capacity exceeded")

	// ErrInvalidDate возвращается при некорректной дате записи
	ErrInvalidDate = errors.New("create_appointment: invalid appointment date")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
