package daycapacity

import "errors"

var (
	// ErrCapacityNotFound возвращается, когда для даты нет сохранённой конфигурации.
	// Вызывающий код обязан трактовать это как дефолтную конфигурацию, а не как сбой.
	ErrCapacityNotFound = errors.New("daycapacity.repository: capacity not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("daycapacity.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("daycapacity.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("daycapacity.repository: failed to scan row")
)
