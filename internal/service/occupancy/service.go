package occupancy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	capacityRepo "github.com/m04kA/SMC-SalonScheduler/internal/infra/storage/daycapacity"
	"github.com/m04kA/SMC-SalonScheduler/pkg/ptr"
	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

// Service вычисляет занятость слотов. Не имеет собственного состояния:
// результат Classify - чистая функция от сохранённой конфигурации дня и
// количества активных записей на момент вызова. Внутри транзакции
// использует её (через контекст), так что проверка вместимости при
// создании/подтверждении записи атомарна.
type Service struct {
	appointmentRepo AppointmentRepository
	capacityRepo    CapacityRepository
}

// NewService создает evaluator занятости слотов
func NewService(appointmentRepo AppointmentRepository, capacityRepo CapacityRepository) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		capacityRepo:    capacityRepo,
	}
}

// EffectiveCapacity возвращает конфигурацию дня, подставляя дефолтную для
// неконфигурированных дат. Никогда не возвращает ErrCapacityNotFound.
func (s *Service) EffectiveCapacity(ctx context.Context, salonID int64, date time.Time) (*domain.DayCapacity, error) {
	capacity, err := s.capacityRepo.GetBySalonAndDate(ctx, salonID, date)
	if err != nil {
		if errors.Is(err, capacityRepo.ErrCapacityNotFound) {
			return domain.DefaultDayCapacity(salonID, date), nil
		}
		return nil, fmt.Errorf("%w: EffectiveCapacity - repository error: %v", ErrInternal, err)
	}
	return capacity, nil
}

// CountActive возвращает количество активных записей, занимающих слот.
// Отменённые и закрытые записи слот не занимают.
func (s *Service) CountActive(ctx context.Context, salonID int64, date time.Time, t types.TimeString) (int, error) {
	appointments, err := s.appointmentRepo.GetBySalonWithFilter(ctx, domain.SalonAppointmentsFilter{
		SalonID:   salonID,
		StartDate: ptr.Ptr(date),
		EndDate:   ptr.Ptr(date),
		StartTime: ptr.Ptr(t),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: CountActive - repository error: %v", ErrInternal, err)
	}

	return len(appointments), nil
}

// Classify классифицирует слот по приоритету: закрыт конфигурацией >
// overbooked > full > open. Возвращает также действующую конфигурацию и
// количество активных записей, чтобы вызывающий код не перечитывал их.
func (s *Service) Classify(ctx context.Context, salonID int64, date time.Time, t types.TimeString) (domain.SlotState, *domain.DayCapacity, int, error) {
	capacity, err := s.EffectiveCapacity(ctx, salonID, date)
	if err != nil {
		return "", nil, 0, err
	}

	count, err := s.CountActive(ctx, salonID, date, t)
	if err != nil {
		return "", nil, 0, err
	}

	return domain.ClassifySlot(capacity, t, count), capacity, count, nil
}
