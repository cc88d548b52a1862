package confirm_appointment

import (
	"time"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	confirmAppointment "github.com/m04kA/SMC-SalonScheduler/internal/usecase/confirm_appointment"
)

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID              int64   `json:"id"`
	SalonID         int64   `json:"salonId"`
	ClientID        int64   `json:"clientId"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	ServiceIDs      []int64 `json:"serviceIds"`
	WorkerIDs       []int64 `json:"workerIds"`
	UpdatedAt       string  `json:"updatedAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *confirmAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:              resp.ID,
		SalonID:         resp.SalonID,
		ClientID:        resp.ClientID,
		Date:            resp.Date.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		DurationMinutes: resp.DurationMinutes,
		Status:          resp.Status,
		ServiceIDs:      resp.ServiceIDs,
		WorkerIDs:       resp.WorkerIDs,
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
