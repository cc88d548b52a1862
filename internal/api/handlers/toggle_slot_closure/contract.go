package toggle_slot_closure

import (
	"context"

	"github.com/m04kA/SMC-SalonScheduler/internal/service/capacity/models"
)

type CapacityService interface {
	ToggleSlotClosure(ctx context.Context, req *models.ToggleSlotClosureRequest) (*models.ToggleSlotClosureResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
