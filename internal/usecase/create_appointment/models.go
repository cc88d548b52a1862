package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

// Request модель запроса на создание записи
type Request struct {
	Actor      domain.Actor     // Действующий пользователь
	SalonID    int64            // ID салона
	ClientID   int64            // ID клиента, для которого создаётся запись
	ClientName string           // Имя клиента (денормализация)
	Date       time.Time        // Дата записи (без времени)
	StartTime  types.TimeString // Время начала слота (например, "10:00")
	ServiceIDs []int64          // Услуги записи (минимум одна)
	WorkerIDs  []int64          // Назначенные сотрудники (могут быть добавлены позже)
}

// Response модель ответа с созданной записью
type Response struct {
	ID              int64            // ID созданной записи
	SalonID         int64            // ID салона
	ClientID        int64            // ID клиента
	ClientName      string           // Имя клиента
	Date            time.Time        // Дата записи
	StartTime       types.TimeString // Время начала
	EndTime         types.TimeString // Время окончания (по сумме услуг)
	DurationMinutes int              // Длительность в минутах
	Status          string           // Статус записи
	ServiceIDs      []int64          // Услуги
	WorkerIDs       []int64          // Сотрудники

	SlotState   string // Состояние слота после создания (open/full/overbooked)
	ActiveCount int    // Активных записей в слоте после создания
	MaxSlots    int    // Лимит слота

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
