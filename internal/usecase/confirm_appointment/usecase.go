package confirm_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonScheduler/internal/infra/storage/appointment"
	capacityRepo "github.com/m04kA/SMC-SalonScheduler/internal/infra/storage/daycapacity"
	"github.com/m04kA/SMC-SalonScheduler/pkg/ptr"
)

// UseCase use case для подтверждения записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	capacityRepo    CapacityRepository
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	capacityRepo CapacityRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		capacityRepo:    capacityRepo,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case подтверждения записи.
// Вместимость перепроверяется на момент подтверждения, не доверяя
// проверке при создании: слот могли закрыть или заполнить между ними.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ConfirmAppointment: appointment id=%d by actor=%d", req.AppointmentID, req.Actor.ID)

	// 1. Проверка права на подтверждение
	if !req.Actor.Can(domain.CapConfirmAppointment) {
		uc.logger.Warn("ConfirmAppointment: actor=%d (role=%s, mode=%s) lacks confirm capability",
			req.Actor.ID, req.Actor.Role, req.Actor.Mode)
		return nil, ErrPermissionDenied
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// Переменная для хранения результата
	var result *domain.Appointment

	// 3. Перепроверка и переход в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Получаем запись с блокировкой (FOR UPDATE)
		appointment, err := uc.appointmentRepo.GetByID(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				uc.logger.Warn("ConfirmAppointment: appointment id=%d not found", req.AppointmentID)
				return ErrAppointmentNotFound
			}
			uc.logger.Error("ConfirmAppointment: failed to get appointment id=%d: %v", req.AppointmentID, err)
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		// 3.2. Подтверждает персонал салона записи
		if !req.Actor.CanManageSalon(appointment.SalonID) {
			uc.logger.Warn("ConfirmAppointment: access denied for actor=%d to salon=%d",
				req.Actor.ID, appointment.SalonID)
			return ErrPermissionDenied
		}

		// 3.3. Получаем конфигурацию дня; для неконфигурированной даты - дефолт
		capacity, err := uc.capacityRepo.GetBySalonAndDate(txCtx, appointment.SalonID, appointment.Date)
		if err != nil {
			if !errors.Is(err, capacityRepo.ErrCapacityNotFound) {
				uc.logger.Error("ConfirmAppointment: failed to get capacity: %v", err)
				return fmt.Errorf("%w: failed to get capacity: %v", ErrInternal, err)
			}
			capacity = domain.DefaultDayCapacity(appointment.SalonID, appointment.Date)
		}

		// 3.4. Жёсткая проверка закрытия: слот могли закрыть после создания
		if capacity.IsClosed || capacity.IsSlotClosed(appointment.StartTime) {
			uc.logger.Warn("ConfirmAppointment: slot %s %s closed since creation for salon=%d",
				appointment.Date.Format(domain.DateFormat), appointment.StartTime, appointment.SalonID)
			return ErrSlotUnavailable
		}

		// 3.5. Перепроверка вместимости: подтверждаемая запись уже входит
		// в число активных, поэтому блокирует только переполнение сверх лимита
		filter := domain.SalonAppointmentsFilter{
			SalonID:         appointment.SalonID,
			StartDate:       ptr.Ptr(appointment.Date),
			EndDate:         ptr.Ptr(appointment.Date),
			StartTime:       ptr.Ptr(appointment.StartTime),
			IncludeInactive: false,
		}
		active, err := uc.appointmentRepo.GetBySalonWithFilter(txCtx, filter)
		if err != nil {
			uc.logger.Error("ConfirmAppointment: failed to get active appointments: %v", err)
			return fmt.Errorf("%w: failed to get active appointments: %v", ErrInternal, err)
		}

		if len(active) > capacity.MaxSlots && !capacity.AllowOverbooking &&
			!req.Actor.Can(domain.CapOverrideCapacity) {
			uc.logger.Warn("ConfirmAppointment: slot overbooked, %d/%d taken", len(active), capacity.MaxSlots)
			return ErrCapacityExceeded
		}

		// 3.6. Переход pending -> confirmed
		if err := appointment.Confirm(req.Actor, now); err != nil {
			return uc.mapDomainError(req.AppointmentID, err)
		}

		if err := uc.appointmentRepo.ApplyTransition(txCtx, appointment, *appointment.LastHistoryEntry()); err != nil {
			uc.logger.Error("ConfirmAppointment: failed to persist transition for appointment id=%d: %v",
				req.AppointmentID, err)
			return fmt.Errorf("%w: persist transition: %v", ErrInternal, err)
		}

		result = appointment
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("ConfirmAppointment: appointment id=%d confirmed", result.ID)

	return &Response{
		ID:              result.ID,
		SalonID:         result.SalonID,
		ClientID:        result.ClientID,
		Date:            result.Date,
		StartTime:       result.StartTime,
		DurationMinutes: result.DurationMinutes,
		Status:          string(result.Status),
		ServiceIDs:      result.ServiceIDs,
		WorkerIDs:       result.WorkerIDs,
		UpdatedAt:       result.UpdatedAt,
	}, nil
}

// mapDomainError переводит доменные ошибки агрегата в ошибки usecase
func (uc *UseCase) mapDomainError(id int64, err error) error {
	var invalidTransition *domain.InvalidTransitionError
	switch {
	case errors.As(err, &invalidTransition):
		uc.logger.Warn("ConfirmAppointment: appointment id=%d: %v", id, err)
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	case errors.Is(err, domain.ErrWorkersRequired), errors.Is(err, domain.ErrServicesRequired):
		uc.logger.Warn("ConfirmAppointment: appointment id=%d: %v", id, err)
		return fmt.Errorf("%w: %v", ErrWorkersRequired, err)
	default:
		uc.logger.Error("ConfirmAppointment: appointment id=%d: unexpected domain error: %v", id, err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
