package occupancy

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetBySalonWithFilter(ctx context.Context, filter domain.SalonAppointmentsFilter) ([]*domain.Appointment, error)
}

// CapacityRepository интерфейс репозитория вместимости по дням
type CapacityRepository interface {
	GetBySalonAndDate(ctx context.Context, salonID int64, date time.Time) (*domain.DayCapacity, error)
}
