package get_day_capacity

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonScheduler/internal/service/capacity/models"
)

type CapacityService interface {
	GetEffective(ctx context.Context, salonID int64, date time.Time) (*models.DayCapacityResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
