package get_day_schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	capacityRepo "github.com/m04kA/SMC-SalonScheduler/internal/infra/storage/daycapacity"
	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

type fakeAppointmentRepo struct {
	appointments []*domain.Appointment
}

func (f *fakeAppointmentRepo) GetBySalonWithFilter(_ context.Context, _ domain.SalonAppointmentsFilter) ([]*domain.Appointment, error) {
	return f.appointments, nil
}

type fakeCapacityRepo struct {
	capacity *domain.DayCapacity
}

func (f *fakeCapacityRepo) GetBySalonAndDate(_ context.Context, _ int64, _ time.Time) (*domain.DayCapacity, error) {
	if f.capacity == nil {
		return nil, capacityRepo.ErrCapacityNotFound
	}
	return f.capacity, nil
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

var ucDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func appointmentAt(start types.TimeString) *domain.Appointment {
	return &domain.Appointment{
		SalonID:   1,
		Date:      ucDate,
		StartTime: start,
		Status:    domain.StatusConfirmed,
	}
}

func TestExecute_DefaultCapacityGrid(t *testing.T) {
	uc := NewUseCase(&fakeAppointmentRepo{}, &fakeCapacityRepo{}, noopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, Date: ucDate})

	require.NoError(t, err)
	assert.False(t, resp.IsClosed)
	assert.Equal(t, domain.DefaultMaxSlots, resp.MaxSlots)

	// Сетка 09:00..19:00 с шагом в час: последний слот за час до закрытия
	require.Len(t, resp.Slots, 11)
	assert.Equal(t, types.TimeString("09:00"), resp.Slots[0].StartTime)
	assert.Equal(t, types.TimeString("19:00"), resp.Slots[len(resp.Slots)-1].StartTime)
	for _, slot := range resp.Slots {
		assert.Equal(t, string(domain.SlotOpen), slot.State)
		assert.Equal(t, 0, slot.ActiveCount)
	}
}

func TestExecute_CountsActiveBySlot(t *testing.T) {
	repo := &fakeAppointmentRepo{appointments: []*domain.Appointment{
		appointmentAt("10:00"),
		appointmentAt("10:00"),
		appointmentAt("14:00"),
	}}
	capRepo := &fakeCapacityRepo{capacity: &domain.DayCapacity{
		SalonID: 1, Date: ucDate, MaxSlots: 2,
	}}
	uc := NewUseCase(repo, capRepo, noopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, Date: ucDate})
	require.NoError(t, err)

	byTime := make(map[types.TimeString]Slot, len(resp.Slots))
	for _, slot := range resp.Slots {
		byTime[slot.StartTime] = slot
	}

	assert.Equal(t, 2, byTime["10:00"].ActiveCount)
	assert.Equal(t, string(domain.SlotFull), byTime["10:00"].State)
	assert.Equal(t, 1, byTime["14:00"].ActiveCount)
	assert.Equal(t, string(domain.SlotOpen), byTime["14:00"].State)
	assert.Equal(t, 0, byTime["09:00"].ActiveCount)
}

func TestExecute_ClosedSlotsAndOverbooking(t *testing.T) {
	repo := &fakeAppointmentRepo{appointments: []*domain.Appointment{
		appointmentAt("11:00"),
		appointmentAt("11:00"),
		appointmentAt("11:00"),
	}}
	capRepo := &fakeCapacityRepo{capacity: &domain.DayCapacity{
		SalonID: 1, Date: ucDate, MaxSlots: 2,
		ClosedSlots: []types.TimeString{"13:00"},
	}}
	uc := NewUseCase(repo, capRepo, noopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, Date: ucDate})
	require.NoError(t, err)

	byTime := make(map[types.TimeString]Slot, len(resp.Slots))
	for _, slot := range resp.Slots {
		byTime[slot.StartTime] = slot
	}

	assert.Equal(t, string(domain.SlotOverbooked), byTime["11:00"].State)
	assert.Equal(t, string(domain.SlotClosedByConfig), byTime["13:00"].State)
}

func TestExecute_ClosedDay(t *testing.T) {
	capRepo := &fakeCapacityRepo{capacity: &domain.DayCapacity{
		SalonID: 1, Date: ucDate, MaxSlots: 5, IsClosed: true,
	}}
	uc := NewUseCase(&fakeAppointmentRepo{}, capRepo, noopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, Date: ucDate})
	require.NoError(t, err)

	assert.True(t, resp.IsClosed)
	for _, slot := range resp.Slots {
		assert.Equal(t, string(domain.SlotClosedByConfig), slot.State)
	}
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := NewUseCase(&fakeAppointmentRepo{}, &fakeCapacityRepo{}, noopLogger{})

	_, err := uc.Execute(context.Background(), &Request{SalonID: 0, Date: ucDate})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{SalonID: 1})
	require.ErrorIs(t, err, ErrInvalidInput)
}
