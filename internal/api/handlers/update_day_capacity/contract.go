package update_day_capacity

import (
	"context"

	"github.com/m04kA/SMC-SalonScheduler/internal/service/capacity/models"
)

type CapacityService interface {
	Update(ctx context.Context, req *models.UpdateDayCapacityRequest) (*models.DayCapacityResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
