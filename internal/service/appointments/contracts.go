package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	billingClient "github.com/m04kA/SMC-SalonScheduler/internal/integrations/billingservice"
	salonClient "github.com/m04kA/SMC-SalonScheduler/internal/integrations/salonservice"
	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetBySalonWithFilter(ctx context.Context, filter domain.SalonAppointmentsFilter) ([]*domain.Appointment, error)
	ApplyTransition(ctx context.Context, a *domain.Appointment, entry domain.AuditEntry) error
	ReplaceAssignments(ctx context.Context, a *domain.Appointment) error
	AddComment(ctx context.Context, appointmentID int64, c domain.Comment) error
	InsertHistory(ctx context.Context, appointmentID int64, entry domain.AuditEntry) error
}

// OccupancyService интерфейс оценщика занятости слотов
type OccupancyService interface {
	Classify(ctx context.Context, salonID int64, date time.Time, t types.TimeString) (domain.SlotState, *domain.DayCapacity, int, error)
}

// SalonServiceClient интерфейс клиента сервиса салонов
type SalonServiceClient interface {
	GetSalon(ctx context.Context, salonID int64) (*salonClient.Salon, error)
	GetService(ctx context.Context, salonID, serviceID int64) (*salonClient.Service, error)
}

// BillingServiceClient интерфейс клиента биллинга
type BillingServiceClient interface {
	NotifyAppointmentClosedWithGracefulDegradation(ctx context.Context, event *billingClient.AppointmentClosedEvent) error
}

// TransactionManager интерфейс менеджера транзакций
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
