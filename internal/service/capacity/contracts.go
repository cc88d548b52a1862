package capacity

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
)

// CapacityRepository интерфейс репозитория вместимости по дням
type CapacityRepository interface {
	GetBySalonAndDate(ctx context.Context, salonID int64, date time.Time) (*domain.DayCapacity, error)
	Upsert(ctx context.Context, c *domain.DayCapacity) (*domain.DayCapacity, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
