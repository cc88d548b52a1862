package update_day_capacity

import (
	"time"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	"github.com/m04kA/SMC-SalonScheduler/internal/service/capacity/models"
	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

// UpdateDayCapacityRequest HTTP request model.
// Отсутствующие поля сохраняют текущее значение.
type UpdateDayCapacityRequest struct {
	Date             string    `json:"date"` // "2025-10-15"
	MaxSlots         *int      `json:"maxSlots,omitempty"`
	ClosedSlots      *[]string `json:"closedSlots,omitempty"` // ["09:00", "14:00"]
	IsClosed         *bool     `json:"isClosed,omitempty"`
	AllowOverbooking *bool     `json:"allowOverbooking,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateDayCapacityRequest) ToServiceRequest(salonID int64, actor domain.Actor) (*models.UpdateDayCapacityRequest, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	req := &models.UpdateDayCapacityRequest{
		Actor:            actor,
		SalonID:          salonID,
		Date:             date,
		MaxSlots:         r.MaxSlots,
		IsClosed:         r.IsClosed,
		AllowOverbooking: r.AllowOverbooking,
	}

	if r.ClosedSlots != nil {
		closedSlots := make([]types.TimeString, 0, len(*r.ClosedSlots))
		for _, raw := range *r.ClosedSlots {
			t, err := types.NewTimeStringFromString(raw)
			if err != nil {
				return nil, err
			}
			closedSlots = append(closedSlots, t)
		}
		req.ClosedSlots = &closedSlots
	}

	return req, nil
}
