package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	createAppointment "github.com/m04kA/SMC-SalonScheduler/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	SalonID    int64   `json:"salonId"`
	ClientID   int64   `json:"clientId"`
	ClientName string  `json:"clientName"`
	Date       string  `json:"date"`      // "2025-10-15"
	StartTime  string  `json:"startTime"` // "10:00"
	ServiceIDs []int64 `json:"serviceIds"`
	WorkerIDs  []int64 `json:"workerIds,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID              int64   `json:"id"`
	SalonID         int64   `json:"salonId"`
	ClientID        int64   `json:"clientId"`
	ClientName      string  `json:"clientName"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	ServiceIDs      []int64 `json:"serviceIds"`
	WorkerIDs       []int64 `json:"workerIds"`
	SlotState       string  `json:"slotState"`
	ActiveCount     int     `json:"activeCount"`
	MaxSlots        int     `json:"maxSlots"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(actor domain.Actor) (*createAppointment.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createAppointment.Request{
		Actor:      actor,
		SalonID:    r.SalonID,
		ClientID:   r.ClientID,
		ClientName: r.ClientName,
		Date:       date,
		StartTime:  startTime,
		ServiceIDs: r.ServiceIDs,
		WorkerIDs:  r.WorkerIDs,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:              resp.ID,
		SalonID:         resp.SalonID,
		ClientID:        resp.ClientID,
		ClientName:      resp.ClientName,
		Date:            resp.Date.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		EndTime:         resp.EndTime.String(),
		DurationMinutes: resp.DurationMinutes,
		Status:          resp.Status,
		ServiceIDs:      resp.ServiceIDs,
		WorkerIDs:       resp.WorkerIDs,
		SlotState:       resp.SlotState,
		ActiveCount:     resp.ActiveCount,
		MaxSlots:        resp.MaxSlots,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
