package get_day_schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	capacityRepo "github.com/m04kA/SMC-SalonScheduler/internal/infra/storage/daycapacity"
	"github.com/m04kA/SMC-SalonScheduler/pkg/ptr"
	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

// UseCase use case для получения почасового расписания дня
type UseCase struct {
	appointmentRepo AppointmentRepository
	capacityRepo    CapacityRepository
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	capacityRepo CapacityRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		capacityRepo:    capacityRepo,
		logger:          logger,
	}
}

// Execute выполняет use case получения расписания дня.
// Классификация слотов - чтение без блокировок: результат носит
// рекомендательный характер, вместимость перепроверяется при записи.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetDaySchedule: salon=%d, date=%s", req.SalonID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if req.SalonID <= 0 {
		return nil, fmt.Errorf("%w: salonId must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	// 2. Получаем конфигурацию дня; для неконфигурированной даты - дефолт
	capacity, err := uc.capacityRepo.GetBySalonAndDate(ctx, req.SalonID, req.Date)
	if err != nil {
		if !errors.Is(err, capacityRepo.ErrCapacityNotFound) {
			uc.logger.Error("GetDaySchedule: failed to get capacity: %v", err)
			return nil, fmt.Errorf("%w: failed to get capacity: %v", ErrInternal, err)
		}
		capacity = domain.DefaultDayCapacity(req.SalonID, req.Date)
		uc.logger.Info("GetDaySchedule: using default capacity for salon=%d, date=%s",
			req.SalonID, req.Date.Format(domain.DateFormat))
	}

	// 3. Получаем активные записи дня одним запросом
	filter := domain.SalonAppointmentsFilter{
		SalonID:         req.SalonID,
		StartDate:       ptr.Ptr(req.Date),
		EndDate:         ptr.Ptr(req.Date),
		IncludeInactive: false,
	}
	appointments, err := uc.appointmentRepo.GetBySalonWithFilter(ctx, filter)
	if err != nil {
		uc.logger.Error("GetDaySchedule: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	// 4. Считаем занятость по времени начала
	activeByTime := make(map[types.TimeString]int, len(appointments))
	for _, a := range appointments {
		activeByTime[a.StartTime]++
	}

	// 5. Строим почасовую сетку от открытия до закрытия
	slots, err := buildSlotGrid(capacity, activeByTime)
	if err != nil {
		uc.logger.Error("GetDaySchedule: failed to build slot grid: %v", err)
		return nil, fmt.Errorf("%w: failed to build slot grid: %v", ErrInternal, err)
	}

	uc.logger.Info("GetDaySchedule: salon=%d, date=%s, %d slots, %d active appointments",
		req.SalonID, req.Date.Format(domain.DateFormat), len(slots), len(appointments))

	return &Response{
		SalonID:  req.SalonID,
		Date:     req.Date,
		IsClosed: capacity.IsClosed,
		MaxSlots: capacity.MaxSlots,
		Slots:    slots,
	}, nil
}

// buildSlotGrid строит сетку слотов: последний слот начинается за шаг
// до закрытия.
func buildSlotGrid(capacity *domain.DayCapacity, activeByTime map[types.TimeString]int) ([]Slot, error) {
	dayEnd := types.TimeString(domain.ScheduleDayEnd)

	slots := make([]Slot, 0, 16)
	current := types.TimeString(domain.ScheduleDayStart)
	for current.IsBefore(dayEnd) {
		count := activeByTime[current]
		slots = append(slots, Slot{
			StartTime:   current,
			State:       string(domain.ClassifySlot(capacity, current, count)),
			ActiveCount: count,
			MaxSlots:    capacity.MaxSlots,
		})

		next, err := current.AddMinutes(domain.ScheduleSlotStepMinutes)
		if err != nil {
			return nil, err
		}
		current = next
	}

	return slots, nil
}
