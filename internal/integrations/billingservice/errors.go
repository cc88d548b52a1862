package billingservice

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("billingservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("billingservice client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation.
	// Указывает, что BillingService недоступен; закрытие записи при этом
	// не блокируется, доход будет донесён повторной отправкой.
	ErrServiceDegraded = errors.New("billingservice unavailable: graceful degradation applied")
)
