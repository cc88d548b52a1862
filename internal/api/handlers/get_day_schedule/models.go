package get_day_schedule

import (
	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	getDaySchedule "github.com/m04kA/SMC-SalonScheduler/internal/usecase/get_day_schedule"
)

// SlotResponse HTTP модель одного слота сетки
type SlotResponse struct {
	StartTime   string `json:"startTime"`
	State       string `json:"state"`
	ActiveCount int    `json:"activeCount"`
	MaxSlots    int    `json:"maxSlots"`
}

// DayScheduleResponse HTTP модель расписания дня
type DayScheduleResponse struct {
	SalonID  int64          `json:"salonId"`
	Date     string         `json:"date"`
	IsClosed bool           `json:"isClosed"`
	MaxSlots int            `json:"maxSlots"`
	Slots    []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getDaySchedule.Response) *DayScheduleResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			StartTime:   s.StartTime.String(),
			State:       s.State,
			ActiveCount: s.ActiveCount,
			MaxSlots:    s.MaxSlots,
		})
	}

	return &DayScheduleResponse{
		SalonID:  resp.SalonID,
		Date:     resp.Date.Format(domain.DateFormat),
		IsClosed: resp.IsClosed,
		MaxSlots: resp.MaxSlots,
		Slots:    slots,
	}
}
