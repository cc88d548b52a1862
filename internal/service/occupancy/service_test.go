package occupancy

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

var svcDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func appointments(n int) []*domain.Appointment {
	out := make([]*domain.Appointment, n)
	for i := range out {
		out[i] = &domain.Appointment{Status: domain.StatusConfirmed}
	}
	return out
}

func TestEffectiveCapacity_DefaultOnMiss(t *testing.T) {
	service := NewService(&fakeAppointmentRepo{}, &fakeCapacityRepo{})

	capacity, err := service.EffectiveCapacity(context.Background(), 1, svcDate)

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMaxSlots, capacity.MaxSlots)
	assert.False(t, capacity.IsClosed)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		capacity  *domain.DayCapacity
		active    int
		wantState domain.SlotState
	}{
		{"open with default capacity", nil, 2, domain.SlotOpen},
		{"full at stored limit", &domain.DayCapacity{MaxSlots: 2}, 2, domain.SlotFull},
		{"overbooked beyond limit", &domain.DayCapacity{MaxSlots: 2}, 3, domain.SlotOverbooked},
		{"closed by configuration", &domain.DayCapacity{MaxSlots: 2, ClosedSlots: []types.TimeString{"10:00"}}, 0, domain.SlotClosedByConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(
				&fakeAppointmentRepo{appointments: appointments(tt.active)},
				&fakeCapacityRepo{capacity: tt.capacity},
			)

			state, capacity, count, err := service.Classify(context.Background(), 1, svcDate, "10:00")

			require.NoError(t, err)
			assert.Equal(t, tt.wantState, state)
			assert.Equal(t, tt.active, count)
			require.NotNil(t, capacity)
		})
	}
}
