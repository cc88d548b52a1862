package confirm_appointment

import (
	"time"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

// Request модель запроса на подтверждение записи
type Request struct {
	Actor         domain.Actor // Действующий пользователь
	AppointmentID int64        // ID записи
}

// Response модель ответа с подтверждённой записью
type Response struct {
	ID              int64            // ID записи
	SalonID         int64            // ID салона
	ClientID        int64            // ID клиента
	Date            time.Time        // Дата записи
	StartTime       types.TimeString // Время начала
	DurationMinutes int              // Длительность в минутах
	Status          string           // Статус записи
	ServiceIDs      []int64          // Услуги
	WorkerIDs       []int64          // Сотрудники
	UpdatedAt       time.Time        // Время обновления
}
