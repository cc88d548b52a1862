package models

import (
	"time"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

// Request модели

// CancelAppointmentRequest запрос на отмену записи
type CancelAppointmentRequest struct {
	Actor  domain.Actor
	Reason *string
}

// CloseAppointmentRequest запрос на закрытие (оказание услуги) записи
type CloseAppointmentRequest struct {
	Actor domain.Actor
}

// ProposeRescheduleRequest запрос на предложение переноса записи
type ProposeRescheduleRequest struct {
	Actor   domain.Actor
	NewDate time.Time
	NewTime types.TimeString
}

// ResolveRescheduleRequest решение по предложенному переносу
type ResolveRescheduleRequest struct {
	Actor    domain.Actor
	Approved bool
	Reason   *string
}

// UpdateAssignmentsRequest запрос на изменение назначенных сотрудников и услуг
type UpdateAssignmentsRequest struct {
	Actor      domain.Actor
	WorkerIDs  []int64
	ServiceIDs []int64
}

// AddCommentRequest запрос на добавление комментария сотрудника
type AddCommentRequest struct {
	Actor domain.Actor
	Body  string
}

// GetSalonAppointmentsRequest запрос на получение записей салона
type GetSalonAppointmentsRequest struct {
	Actor           domain.Actor
	SalonID         int64
	ClientID        *int64
	StartDate       *time.Time
	EndDate         *time.Time
	Status          *string
	IncludeInactive bool
}

// ToDomainFilter конвертирует request в доменный фильтр
func (r *GetSalonAppointmentsRequest) ToDomainFilter() (domain.SalonAppointmentsFilter, error) {
	filter := domain.SalonAppointmentsFilter{
		SalonID:         r.SalonID,
		ClientID:        r.ClientID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := domain.ParseAppointmentStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// CommentResponse комментарий сотрудника
type CommentResponse struct {
	ID         string    `json:"id"`
	AuthorID   int64     `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AuditEntryResponse запись истории взаимодействий
type AuditEntryResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Action    string    `json:"action"`
	ActorID   int64     `json:"actorId"`
	ActorName string    `json:"actorName"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID              int64   `json:"id"`
	SalonID         int64   `json:"salonId"`
	ClientID        int64   `json:"clientId"`
	ClientName      string  `json:"clientName"`
	Date            string  `json:"date"`      // "2025-10-15"
	StartTime       string  `json:"startTime"` // "10:00"
	EndTime         string  `json:"endTime"`   // "11:30"
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	WorkerIDs       []int64 `json:"workerIds"`
	ServiceIDs      []int64 `json:"serviceIds"`

	PrevDate      *string `json:"prevDate,omitempty"`
	PrevStartTime *string `json:"prevStartTime,omitempty"`

	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`

	Comments []CommentResponse    `json:"comments,omitempty"`
	History  []AuditEntryResponse `json:"history,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse список записей
type AppointmentListResponse struct {
	Appointments []*AppointmentResponse `json:"appointments"`
	Total        int                    `json:"total"`
}

// FromDomainAppointment конвертирует доменную модель в response
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	resp := &AppointmentResponse{
		ID:              a.ID,
		SalonID:         a.SalonID,
		ClientID:        a.ClientID,
		ClientName:      a.ClientName,
		Date:            a.Date.Format(domain.DateFormat),
		StartTime:       string(a.StartTime),
		DurationMinutes: a.DurationMinutes,
		Status:          string(a.Status),
		WorkerIDs:       a.WorkerIDs,
		ServiceIDs:      a.ServiceIDs,

		CancellationReason: a.CancellationReason,
		CancelledAt:        a.CancelledAt,

		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}

	if endTime, err := a.EndTime(); err == nil {
		resp.EndTime = string(endTime)
	}

	if a.PrevDate != nil {
		prevDate := a.PrevDate.Format(domain.DateFormat)
		resp.PrevDate = &prevDate
	}
	if a.PrevStartTime != nil {
		prevTime := string(*a.PrevStartTime)
		resp.PrevStartTime = &prevTime
	}

	for _, c := range a.Comments {
		resp.Comments = append(resp.Comments, CommentResponse{
			ID:         c.ID.String(),
			AuthorID:   c.AuthorID,
			AuthorName: c.AuthorName,
			Body:       c.Body,
			CreatedAt:  c.CreatedAt,
		})
	}

	for _, e := range a.History {
		resp.History = append(resp.History, AuditEntryResponse{
			ID:        e.ID.String(),
			Kind:      string(e.Kind),
			Action:    e.Action,
			ActorID:   e.ActorID,
			ActorName: e.ActorName,
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt,
		})
	}

	return resp
}

// FromDomainAppointmentList конвертирует список доменных моделей в response
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	list := make([]*AppointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		list = append(list, FromDomainAppointment(a))
	}

	return &AppointmentListResponse{
		Appointments: list,
		Total:        len(list),
	}
}
