package get_day_schedule

import (
	"time"

	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

// Request модель запроса расписания дня
type Request struct {
	SalonID int64     // ID салона
	Date    time.Time // Дата (без времени)
}

// Response модель ответа с почасовой сеткой дня
type Response struct {
	SalonID  int64     // ID салона
	Date     time.Time // Дата
	IsClosed bool      // Весь день закрыт конфигурацией
	MaxSlots int       // Лимит записей на слот
	Slots    []Slot    // Почасовая сетка
}

// Slot модель одного слота сетки
type Slot struct {
	StartTime   types.TimeString // Время начала слота (например, "10:00")
	State       string           // open / full / overbooked / closed
	ActiveCount int              // Активных записей в слоте
	MaxSlots    int              // Лимит слота
}
