package create_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	capacityRepo "github.com/m04kA/SMC-SalonScheduler/internal/infra/storage/daycapacity"
	salonClient "github.com/m04kA/SMC-SalonScheduler/internal/integrations/salonservice"
	"github.com/m04kA/SMC-SalonScheduler/pkg/ptr"
)

// UseCase use case для создания записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	capacityRepo    CapacityRepository
	salonClient     SalonServiceClient
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	capacityRepo CapacityRepository,
	salonClient SalonServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		capacityRepo:    capacityRepo,
		salonClient:     salonClient,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания записи.
// Проверка вместимости и вставка выполняются в сериализуемой транзакции,
// чтобы конкурирующие запросы на один слот не превышали лимит.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: actor=%d, salon=%d, client=%d, date=%s, time=%s",
		req.Actor.ID, req.SalonID, req.ClientID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверка прав: способность создавать записи и запрет клиенту
	// бронировать от чужого имени
	if !req.Actor.Can(domain.CapCreateAppointment) {
		uc.logger.Warn("CreateAppointment: actor=%d (role=%s, mode=%s) lacks create capability",
			req.Actor.ID, req.Actor.Role, req.Actor.Mode)
		return nil, ErrPermissionDenied
	}
	if err := validateActorMayBookFor(req.Actor, req.ClientID); err != nil {
		uc.logger.Warn("CreateAppointment: actor=%d may not book for client=%d", req.Actor.ID, req.ClientID)
		return nil, err
	}

	// 3. Получаем текущее время
	now := uc.timeProvider.Now()

	if err := validateDate(req.Date, now); err != nil {
		uc.logger.Warn("CreateAppointment: date validation failed: %v", err)
		return nil, err
	}

	// 4. Получаем салон
	salon, err := uc.salonClient.GetSalon(ctx, req.SalonID)
	if err != nil {
		if errors.Is(err, salonClient.ErrSalonNotFound) {
			uc.logger.Warn("CreateAppointment: salon id=%d not found", req.SalonID)
			return nil, ErrSalonNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get salon id=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: failed to get salon: %v", ErrInternal, err)
	}

	// 5. Проверяем принадлежность сотрудников салону
	for _, workerID := range req.WorkerIDs {
		if !salon.HasWorker(workerID) {
			uc.logger.Warn("CreateAppointment: worker id=%d does not belong to salon=%d", workerID, req.SalonID)
			return nil, fmt.Errorf("%w: worker id=%d", ErrWorkerNotInSalon, workerID)
		}
	}

	// 6. Получаем услуги и считаем суммарную длительность
	totalDuration := 0
	for _, serviceID := range req.ServiceIDs {
		service, err := uc.salonClient.GetService(ctx, req.SalonID, serviceID)
		if err != nil {
			if errors.Is(err, salonClient.ErrServiceNotFound) {
				uc.logger.Warn("CreateAppointment: service id=%d not found in salon=%d", serviceID, req.SalonID)
				return nil, fmt.Errorf("%w: service id=%d", ErrServiceNotFound, serviceID)
			}
			uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", serviceID, err)
			return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}
		totalDuration += service.DurationMinutes
	}

	// Запись должна заканчиваться в тот же день
	endTime, err := req.StartTime.AddMinutes(totalDuration)
	if err != nil {
		uc.logger.Warn("CreateAppointment: services do not fit the day: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// Переменные для хранения результата
	var (
		result      *domain.Appointment
		slotState   domain.SlotState
		activeCount int
		maxSlots    int
	)

	// 7. Проверка вместимости и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 7.1. Получаем конфигурацию дня; для неконфигурированной даты - дефолт
		capacity, err := uc.capacityRepo.GetBySalonAndDate(txCtx, req.SalonID, req.Date)
		if err != nil {
			if !errors.Is(err, capacityRepo.ErrCapacityNotFound) {
				uc.logger.Error("CreateAppointment: failed to get capacity: %v", err)
				return fmt.Errorf("%w: failed to get capacity: %v", ErrInternal, err)
			}
			capacity = domain.DefaultDayCapacity(req.SalonID, req.Date)
			uc.logger.Info("CreateAppointment: using default capacity for salon=%d, date=%s",
				req.SalonID, req.Date.Format(domain.DateFormat))
		}

		// 7.2. Закрытие конфигурацией отклоняет запрос независимо от занятости
		if capacity.IsClosed || capacity.IsSlotClosed(req.StartTime) {
			uc.logger.Warn("CreateAppointment: slot %s %s is closed for salon=%d",
				req.Date.Format(domain.DateFormat), req.StartTime, req.SalonID)
			return ErrSlotUnavailable
		}

		// 7.3. Считаем активные записи в слоте с блокировкой (FOR UPDATE)
		filter := domain.SalonAppointmentsFilter{
			SalonID:         req.SalonID,
			StartDate:       ptr.Ptr(req.Date),
			EndDate:         ptr.Ptr(req.Date),
			StartTime:       ptr.Ptr(req.StartTime),
			IncludeInactive: false,
		}
		active, err := uc.appointmentRepo.GetBySalonWithFilter(txCtx, filter)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to get active appointments: %v", err)
			return fmt.Errorf("%w: failed to get active appointments: %v", ErrInternal, err)
		}

		// 7.4. Проверяем вместимость слота
		state := domain.ClassifySlot(capacity, req.StartTime, len(active))
		blocked := state == domain.SlotOverbooked ||
			(state == domain.SlotFull && !capacity.AllowOverbooking)
		if blocked && !req.Actor.Can(domain.CapOverrideCapacity) {
			uc.logger.Warn("CreateAppointment: slot capacity exceeded, %d/%d taken, overbooking=%t",
				len(active), capacity.MaxSlots, capacity.AllowOverbooking)
			return ErrCapacityExceeded
		}
		if blocked {
			uc.logger.Info("CreateAppointment: capacity override by actor=%d, %d/%d taken",
				req.Actor.ID, len(active), capacity.MaxSlots)
		}

		// 7.5. Создаем запись в статусе pending
		appointment, err := domain.NewAppointment(
			req.SalonID, req.ClientID, req.ClientName,
			req.Date, req.StartTime, totalDuration,
			req.ServiceIDs, req.WorkerIDs,
			req.Actor, now,
		)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		created, err := uc.appointmentRepo.Create(txCtx, appointment)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		result = created
		activeCount = len(active) + 1
		maxSlots = capacity.MaxSlots
		slotState = domain.ClassifySlot(capacity, req.StartTime, activeCount)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateAppointment: appointment id=%d created, slot %d/%d",
		result.ID, activeCount, maxSlots)

	return &Response{
		ID:              result.ID,
		SalonID:         result.SalonID,
		ClientID:        result.ClientID,
		ClientName:      result.ClientName,
		Date:            result.Date,
		StartTime:       result.StartTime,
		EndTime:         endTime,
		DurationMinutes: result.DurationMinutes,
		Status:          string(result.Status),
		ServiceIDs:      result.ServiceIDs,
		WorkerIDs:       result.WorkerIDs,
		SlotState:       string(slotState),
		ActiveCount:     activeCount,
		MaxSlots:        maxSlots,
		CreatedAt:       result.CreatedAt,
		UpdatedAt:       result.UpdatedAt,
	}, nil
}
