package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	// StatusPending - just created, awaiting staff confirmation
	StatusPending AppointmentStatus = "pending"
	// StatusConfirmed - approved by staff, occupies its slot until closed or cancelled
	StatusConfirmed AppointmentStatus = "confirmed"
	// StatusPendingApproval - staff proposed a new schedule, awaiting client consent
	StatusPendingApproval AppointmentStatus = "pending_approval"
	// StatusClosed - service delivered, terminal
	StatusClosed AppointmentStatus = "closed"
	// StatusCancelled - terminal; cancellation is a state, not a removal
	StatusCancelled AppointmentStatus = "cancelled"
)

// Transition event names, used in errors and audit entries
const (
	EventCreate            = "create"
	EventConfirm           = "confirm"
	EventCancel            = "cancel"
	EventProposeReschedule = "propose_reschedule"
	EventApproveReschedule = "approve_reschedule"
	EventRejectReschedule  = "reject_reschedule"
	EventClose             = "close"
)

var (
	// ErrWorkersRequired is returned when a transition requires at least one assigned worker
	ErrWorkersRequired = errors.New("domain: at least one worker must be assigned")

	// ErrServicesRequired is returned when a transition requires at least one assigned service
	ErrServicesRequired = errors.New("domain: at least one service must be assigned")

	// ErrNoPreviousSchedule indicates a reschedule resolution without a stored previous schedule
	ErrNoPreviousSchedule = errors.New("domain: no previous schedule stored for reschedule resolution")
)

// InvalidTransitionError reports an attempted transition the current state
// does not allow. Rejections are explicit; no transition silently no-ops.
type InvalidTransitionError struct {
	AppointmentID int64
	From          AppointmentStatus
	Event         string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("domain: invalid transition %q from status %q (appointment id=%d)",
		e.Event, e.From, e.AppointmentID)
}

// Appointment is the aggregate root of the scheduling core: the booking
// itself, its state machine, its worker/service associations and its
// append-only comment and audit collections. All state changes go through
// the transition methods below; each successful transition appends exactly
// one history entry.
type Appointment struct {
	ID         int64
	SalonID    int64
	ClientID   int64
	ClientName string

	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int

	Status     AppointmentStatus
	WorkerIDs  []int64
	ServiceIDs []int64

	// Previous schedule, stored while a reschedule awaits approval so a
	// rejection can revert exactly
	PrevDate      *time.Time
	PrevStartTime *types.TimeString

	CancellationReason *string
	CancelledAt        *time.Time

	Comments []Comment
	History  []AuditEntry

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndTime returns the appointment's end time, derived from the assigned
// services' total duration.
func (a *Appointment) EndTime() (types.TimeString, error) {
	return a.StartTime.AddMinutes(a.DurationMinutes)
}

// IsActive reports whether the appointment occupies its slot
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelled && a.Status != StatusClosed
}

// IsTerminal reports whether the appointment reached a terminal state
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusCancelled || a.Status == StatusClosed
}

// CanBeCancelled reports whether cancel is a legal transition
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanBeReassigned reports whether worker/service assignments may change
func (a *Appointment) CanBeReassigned() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// NewAppointment creates an appointment in its initial Pending state with a
// creation audit entry. At least one service is required; workers may be
// assigned later (the confirm transition enforces their presence).
func NewAppointment(
	salonID, clientID int64,
	clientName string,
	date time.Time,
	startTime types.TimeString,
	durationMinutes int,
	serviceIDs, workerIDs []int64,
	actor Actor,
	now time.Time,
) (*Appointment, error) {
	if len(serviceIDs) == 0 {
		return nil, ErrServicesRequired
	}

	a := &Appointment{
		SalonID:         salonID,
		ClientID:        clientID,
		ClientName:      clientName,
		Date:            date,
		StartTime:       startTime,
		DurationMinutes: durationMinutes,
		Status:          StatusPending,
		WorkerIDs:       append([]int64{}, workerIDs...),
		ServiceIDs:      append([]int64{}, serviceIDs...),
	}
	a.appendHistory(NewTransitionEntry(EventCreate, actor, nil, now))

	return a, nil
}

// Confirm moves a pending appointment to Confirmed. Requires at least one
// assigned worker and service.
func (a *Appointment) Confirm(actor Actor, now time.Time) error {
	if a.Status != StatusPending {
		return &InvalidTransitionError{AppointmentID: a.ID, From: a.Status, Event: EventConfirm}
	}
	if len(a.WorkerIDs) == 0 {
		return ErrWorkersRequired
	}
	if len(a.ServiceIDs) == 0 {
		return ErrServicesRequired
	}

	a.Status = StatusConfirmed
	a.appendHistory(NewTransitionEntry(EventConfirm, actor, nil, now))
	return nil
}

// Cancel moves a pending or confirmed appointment to the terminal Cancelled
// state. Irreversible; cancelling an already cancelled appointment is an
// invalid transition, not a silent success.
func (a *Appointment) Cancel(actor Actor, reason *string, now time.Time) error {
	if !a.CanBeCancelled() {
		return &InvalidTransitionError{AppointmentID: a.ID, From: a.Status, Event: EventCancel}
	}

	a.Status = StatusCancelled
	a.CancellationReason = reason
	cancelledAt := now
	a.CancelledAt = &cancelledAt
	a.appendHistory(NewTransitionEntry(EventCancel, actor, reason, now))
	return nil
}

// ProposeReschedule moves a confirmed appointment to PendingApproval with the
// proposed schedule applied, storing the previous (date, time) so a rejection
// can revert exactly.
func (a *Appointment) ProposeReschedule(actor Actor, newDate time.Time, newTime types.TimeString, now time.Time) error {
	if a.Status != StatusConfirmed {
		return &InvalidTransitionError{AppointmentID: a.ID, From: a.Status, Event: EventProposeReschedule}
	}

	prevDate := a.Date
	prevTime := a.StartTime
	a.PrevDate = &prevDate
	a.PrevStartTime = &prevTime

	a.Date = newDate
	a.StartTime = newTime
	a.Status = StatusPendingApproval
	a.appendHistory(NewTransitionEntry(EventProposeReschedule, actor, nil, now))
	return nil
}

// ApproveReschedule accepts the proposed schedule and returns to Confirmed
func (a *Appointment) ApproveReschedule(actor Actor, reason *string, now time.Time) error {
	if a.Status != StatusPendingApproval {
		return &InvalidTransitionError{AppointmentID: a.ID, From: a.Status, Event: EventApproveReschedule}
	}

	a.PrevDate = nil
	a.PrevStartTime = nil
	a.Status = StatusConfirmed
	a.appendHistory(NewTransitionEntry(EventApproveReschedule, actor, reason, now))
	return nil
}

// RejectReschedule discards the proposed schedule, restores the previous
// (date, time) exactly and returns to Confirmed.
func (a *Appointment) RejectReschedule(actor Actor, reason *string, now time.Time) error {
	if a.Status != StatusPendingApproval {
		return &InvalidTransitionError{AppointmentID: a.ID, From: a.Status, Event: EventRejectReschedule}
	}
	if a.PrevDate == nil || a.PrevStartTime == nil {
		return ErrNoPreviousSchedule
	}

	a.Date = *a.PrevDate
	a.StartTime = *a.PrevStartTime
	a.PrevDate = nil
	a.PrevStartTime = nil
	a.Status = StatusConfirmed
	a.appendHistory(NewTransitionEntry(EventRejectReschedule, actor, reason, now))
	return nil
}

// Close marks a confirmed appointment as delivered, terminal
func (a *Appointment) Close(actor Actor, now time.Time) error {
	if a.Status != StatusConfirmed {
		return &InvalidTransitionError{AppointmentID: a.ID, From: a.Status, Event: EventClose}
	}

	a.Status = StatusClosed
	a.appendHistory(NewTransitionEntry(EventClose, actor, nil, now))
	return nil
}

// SetAssignments replaces the worker/service associations of a not yet
// terminal appointment. A confirmed appointment must keep both sets
// non-empty; a pending one may still have no workers.
func (a *Appointment) SetAssignments(workerIDs, serviceIDs []int64, totalDurationMinutes int) error {
	if !a.CanBeReassigned() {
		return &InvalidTransitionError{AppointmentID: a.ID, From: a.Status, Event: "set_assignments"}
	}
	if len(serviceIDs) == 0 {
		return ErrServicesRequired
	}
	if a.Status == StatusConfirmed && len(workerIDs) == 0 {
		return ErrWorkersRequired
	}

	a.WorkerIDs = append([]int64{}, workerIDs...)
	a.ServiceIDs = append([]int64{}, serviceIDs...)
	a.DurationMinutes = totalDurationMinutes
	return nil
}

// AddComment appends a staff note
func (a *Appointment) AddComment(c Comment) {
	a.Comments = append(a.Comments, c)
}

func (a *Appointment) appendHistory(entry AuditEntry) {
	a.History = append(a.History, entry)
}

// LastHistoryEntry returns the most recent audit entry, or nil for an
// appointment loaded without history.
func (a *Appointment) LastHistoryEntry() *AuditEntry {
	if len(a.History) == 0 {
		return nil
	}
	return &a.History[len(a.History)-1]
}

// ParseAppointmentStatus converts a transport string into a status
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	switch AppointmentStatus(s) {
	case StatusPending, StatusConfirmed, StatusPendingApproval, StatusClosed, StatusCancelled:
		return AppointmentStatus(s), nil
	default:
		return "", fmt.Errorf("domain: unknown appointment status %q", s)
	}
}

// SalonAppointmentsFilter filters salon-scoped appointment listings
type SalonAppointmentsFilter struct {
	SalonID         int64
	ClientID        *int64
	StartDate       *time.Time
	EndDate         *time.Time
	StartTime       *types.TimeString
	Status          *AppointmentStatus
	IncludeInactive bool
}
