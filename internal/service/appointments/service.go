package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonScheduler/internal/infra/storage/appointment"
	billingClient "github.com/m04kA/SMC-SalonScheduler/internal/integrations/billingservice"
	salonClient "github.com/m04kA/SMC-SalonScheduler/internal/integrations/salonservice"
	"github.com/m04kA/SMC-SalonScheduler/internal/service/appointments/models"
)

// Service сервис жизненного цикла записей: отмена, закрытие, перенос,
// назначения, комментарии и чтение. Переходы статусов выполняются в
// транзакции: чтение с блокировкой строки, переход на агрегате, затем
// атомарная запись нового статуса вместе с записью истории.
type Service struct {
	appointmentRepo AppointmentRepository
	occupancy       OccupancyService
	salonClient     SalonServiceClient
	billingClient   BillingServiceClient
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	occupancy OccupancyService,
	salonClient SalonServiceClient,
	billingClient BillingServiceClient,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		occupancy:       occupancy,
		salonClient:     salonClient,
		billingClient:   billingClient,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает запись по ID.
// Клиент видит только свою запись; персонал - записи своих салонов.
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for actor=%d", id, actor.ID)

	appointment, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkViewAccess(appointment, actor); err != nil {
		s.logger.Warn("GetByID: access denied for actor=%d to appointment id=%d", actor.ID, id)
		return nil, err
	}

	return models.FromDomainAppointment(appointment), nil
}

// GetSalonAppointments получает записи салона с фильтрацией.
// Доступно персоналу салона, в том числе администраторам в режиме read_only.
func (s *Service) GetSalonAppointments(ctx context.Context, req *models.GetSalonAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetSalonAppointments: fetching appointments for salon=%d by actor=%d", req.SalonID, req.Actor.ID)

	if !req.Actor.Can(domain.CapViewSalonSchedule) || !req.Actor.CanManageSalon(req.SalonID) {
		s.logger.Warn("GetSalonAppointments: access denied for actor=%d (role=%s) to salon=%d",
			req.Actor.ID, req.Actor.Role, req.SalonID)
		return nil, ErrPermissionDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetSalonAppointments: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	appointments, err := s.appointmentRepo.GetBySalonWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetSalonAppointments: repository error for salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: GetSalonAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetSalonAppointments: found %d appointments for salon=%d", len(appointments), req.SalonID)
	return models.FromDomainAppointmentList(appointments), nil
}

// Cancel отменяет запись. Терминальный переход: повторная отмена
// возвращает ошибку недопустимого перехода, а не тихий успех.
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelAppointmentRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: cancelling appointment id=%d by actor=%d", id, req.Actor.ID)

	if !req.Actor.Can(domain.CapCancelAppointment) {
		s.logger.Warn("Cancel: actor=%d (role=%s, mode=%s) lacks cancel capability",
			req.Actor.ID, req.Actor.Role, req.Actor.Mode)
		return nil, ErrPermissionDenied
	}
	if req.Reason != nil && len(*req.Reason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: cancellation reason exceeds %d characters",
			ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	appointment, err := s.transition(ctx, id, req.Actor, func(_ context.Context, a *domain.Appointment) error {
		return a.Cancel(req.Actor, req.Reason, s.timeProvider.Now())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cancel: appointment id=%d cancelled", id)
	return models.FromDomainAppointment(appointment), nil
}

// Close закрывает запись как оказанную. После фиксации транзакции
// уведомляет биллинг; недоступность биллинга не отменяет закрытие.
func (s *Service) Close(ctx context.Context, id int64, req *models.CloseAppointmentRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Close: closing appointment id=%d by actor=%d", id, req.Actor.ID)

	if !req.Actor.Can(domain.CapCloseAppointment) {
		s.logger.Warn("Close: actor=%d (role=%s, mode=%s) lacks close capability",
			req.Actor.ID, req.Actor.Role, req.Actor.Mode)
		return nil, ErrPermissionDenied
	}

	now := s.timeProvider.Now()
	appointment, err := s.transition(ctx, id, req.Actor, func(_ context.Context, a *domain.Appointment) error {
		return a.Close(req.Actor, now)
	})
	if err != nil {
		return nil, err
	}

	event := &billingClient.AppointmentClosedEvent{
		AppointmentID: appointment.ID,
		SalonID:       appointment.SalonID,
		ClientID:      appointment.ClientID,
		ServiceIDs:    appointment.ServiceIDs,
		WorkerIDs:     appointment.WorkerIDs,
		ClosedBy:      req.Actor.ID,
		ClosedAt:      now,
	}
	if err := s.billingClient.NotifyAppointmentClosedWithGracefulDegradation(ctx, event); err != nil {
		if errors.Is(err, billingClient.ErrServiceDegraded) {
			s.logger.Warn("Close: billing notification degraded for appointment id=%d", id)
		} else {
			s.logger.Error("Close: billing notification failed for appointment id=%d: %v", id, err)
		}
	}

	s.logger.Info("Close: appointment id=%d closed", id)
	return models.FromDomainAppointment(appointment), nil
}

// ProposeReschedule предлагает перенос подтверждённой записи на новый
// слот. Перенос в закрытый конфигурацией слот отклоняется сразу.
func (s *Service) ProposeReschedule(ctx context.Context, id int64, req *models.ProposeRescheduleRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("ProposeReschedule: appointment id=%d -> date=%s, time=%s by actor=%d",
		id, req.NewDate.Format(domain.DateFormat), req.NewTime, req.Actor.ID)

	if !req.Actor.Can(domain.CapProposeReschedule) {
		s.logger.Warn("ProposeReschedule: actor=%d (role=%s, mode=%s) lacks reschedule capability",
			req.Actor.ID, req.Actor.Role, req.Actor.Mode)
		return nil, ErrPermissionDenied
	}
	if err := req.NewTime.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	appointment, err := s.transition(ctx, id, req.Actor, func(txCtx context.Context, a *domain.Appointment) error {
		state, _, _, err := s.occupancy.Classify(txCtx, a.SalonID, req.NewDate, req.NewTime)
		if err != nil {
			return fmt.Errorf("%w: ProposeReschedule - classify target slot: %v", ErrInternal, err)
		}
		if state == domain.SlotClosedByConfig {
			s.logger.Warn("ProposeReschedule: target slot %s %s is closed for salon=%d",
				req.NewDate.Format(domain.DateFormat), req.NewTime, a.SalonID)
			return ErrSlotUnavailable
		}
		return a.ProposeReschedule(req.Actor, req.NewDate, req.NewTime, s.timeProvider.Now())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ProposeReschedule: appointment id=%d awaiting client approval", id)
	return models.FromDomainAppointment(appointment), nil
}

// ResolveReschedule фиксирует решение по предложенному переносу.
// При одобрении запись остаётся на новом расписании; при отказе
// восстанавливается прежнее расписание в точности.
func (s *Service) ResolveReschedule(ctx context.Context, id int64, req *models.ResolveRescheduleRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("ResolveReschedule: appointment id=%d, approved=%t by actor=%d", id, req.Approved, req.Actor.ID)

	if !req.Actor.Can(domain.CapResolveReschedule) {
		s.logger.Warn("ResolveReschedule: actor=%d (role=%s, mode=%s) lacks resolve capability",
			req.Actor.ID, req.Actor.Role, req.Actor.Mode)
		return nil, ErrPermissionDenied
	}

	var result *domain.Appointment
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		appointment, err := s.getAppointment(ctx, id)
		if err != nil {
			return err
		}

		// Решение принимает владелец записи либо персонал салона
		if appointment.ClientID != req.Actor.ID &&
			!(req.Actor.IsStaff() && req.Actor.CanManageSalon(appointment.SalonID)) {
			s.logger.Warn("ResolveReschedule: access denied for actor=%d to appointment id=%d", req.Actor.ID, id)
			return ErrPermissionDenied
		}

		now := s.timeProvider.Now()
		if req.Approved {
			err = appointment.ApproveReschedule(req.Actor, req.Reason, now)
		} else {
			err = appointment.RejectReschedule(req.Actor, req.Reason, now)
		}
		if err != nil {
			return s.mapDomainError(id, err)
		}

		if err := s.appointmentRepo.ApplyTransition(ctx, appointment, *appointment.LastHistoryEntry()); err != nil {
			s.logger.Error("ResolveReschedule: failed to persist transition for appointment id=%d: %v", id, err)
			return fmt.Errorf("%w: ResolveReschedule - persist transition: %v", ErrInternal, err)
		}

		result = appointment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ResolveReschedule: appointment id=%d resolved, approved=%t", id, req.Approved)
	return models.FromDomainAppointment(result), nil
}

// UpdateAssignments заменяет назначенных сотрудников и услуги записи.
// Сотрудники проверяются на принадлежность салону, услуги - на
// существование; длительность пересчитывается по сумме услуг.
func (s *Service) UpdateAssignments(ctx context.Context, id int64, req *models.UpdateAssignmentsRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("UpdateAssignments: appointment id=%d, workers=%v, services=%v by actor=%d",
		id, req.WorkerIDs, req.ServiceIDs, req.Actor.ID)

	if !req.Actor.Can(domain.CapAssignStaff) {
		s.logger.Warn("UpdateAssignments: actor=%d (role=%s, mode=%s) lacks assign capability",
			req.Actor.ID, req.Actor.Role, req.Actor.Mode)
		return nil, ErrPermissionDenied
	}
	if len(req.ServiceIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one service is required", ErrInvalidInput)
	}

	var result *domain.Appointment
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		appointment, err := s.getAppointment(ctx, id)
		if err != nil {
			return err
		}

		if !req.Actor.CanManageSalon(appointment.SalonID) {
			s.logger.Warn("UpdateAssignments: access denied for actor=%d to salon=%d", req.Actor.ID, appointment.SalonID)
			return ErrPermissionDenied
		}

		totalDuration, err := s.validateAssignments(ctx, appointment.SalonID, req.WorkerIDs, req.ServiceIDs)
		if err != nil {
			return err
		}

		if err := appointment.SetAssignments(req.WorkerIDs, req.ServiceIDs, totalDuration); err != nil {
			return s.mapDomainError(id, err)
		}

		if err := s.appointmentRepo.ReplaceAssignments(ctx, appointment); err != nil {
			s.logger.Error("UpdateAssignments: failed to persist assignments for appointment id=%d: %v", id, err)
			return fmt.Errorf("%w: UpdateAssignments - persist assignments: %v", ErrInternal, err)
		}

		result = appointment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("UpdateAssignments: appointment id=%d updated, duration=%d min", id, result.DurationMinutes)
	return models.FromDomainAppointment(result), nil
}

// AddComment добавляет комментарий персонала к записи.
// Комментарии append-only: не редактируются и не удаляются.
func (s *Service) AddComment(ctx context.Context, id int64, req *models.AddCommentRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("AddComment: appointment id=%d by actor=%d", id, req.Actor.ID)

	if !req.Actor.Can(domain.CapComment) {
		s.logger.Warn("AddComment: actor=%d (role=%s, mode=%s) lacks comment capability",
			req.Actor.ID, req.Actor.Role, req.Actor.Mode)
		return nil, ErrPermissionDenied
	}
	if req.Body == "" {
		return nil, fmt.Errorf("%w: comment body is required", ErrInvalidInput)
	}
	if len(req.Body) > domain.MaxCommentLength {
		return nil, fmt.Errorf("%w: comment exceeds %d characters", ErrInvalidInput, domain.MaxCommentLength)
	}

	var result *domain.Appointment
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		appointment, err := s.getAppointment(ctx, id)
		if err != nil {
			return err
		}

		if !req.Actor.CanManageSalon(appointment.SalonID) {
			s.logger.Warn("AddComment: access denied for actor=%d to salon=%d", req.Actor.ID, appointment.SalonID)
			return ErrPermissionDenied
		}

		now := s.timeProvider.Now()
		comment := domain.NewComment(req.Actor, req.Body, now)
		if err := s.appointmentRepo.AddComment(ctx, appointment.ID, comment); err != nil {
			s.logger.Error("AddComment: failed to persist comment for appointment id=%d: %v", id, err)
			return fmt.Errorf("%w: AddComment - persist comment: %v", ErrInternal, err)
		}
		if err := s.appointmentRepo.InsertHistory(ctx, appointment.ID, domain.NewCommentEntry(req.Actor, now)); err != nil {
			s.logger.Error("AddComment: failed to persist history for appointment id=%d: %v", id, err)
			return fmt.Errorf("%w: AddComment - persist history: %v", ErrInternal, err)
		}

		appointment.AddComment(comment)
		result = appointment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("AddComment: comment added to appointment id=%d", id)
	return models.FromDomainAppointment(result), nil
}

// transition выполняет переход статуса в транзакции: чтение с
// блокировкой, мутация агрегата, атомарная запись статуса и истории.
func (s *Service) transition(ctx context.Context, id int64, actor domain.Actor, mutate func(ctx context.Context, a *domain.Appointment) error) (*domain.Appointment, error) {
	var result *domain.Appointment
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		appointment, err := s.getAppointment(ctx, id)
		if err != nil {
			return err
		}

		if !actor.CanManageSalon(appointment.SalonID) {
			s.logger.Warn("transition: access denied for actor=%d to salon=%d", actor.ID, appointment.SalonID)
			return ErrPermissionDenied
		}

		if err := mutate(ctx, appointment); err != nil {
			return s.mapDomainError(id, err)
		}

		if err := s.appointmentRepo.ApplyTransition(ctx, appointment, *appointment.LastHistoryEntry()); err != nil {
			s.logger.Error("transition: failed to persist transition for appointment id=%d: %v", id, err)
			return fmt.Errorf("%w: transition - persist transition: %v", ErrInternal, err)
		}

		result = appointment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) getAppointment(ctx context.Context, id int64) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("getAppointment: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("getAppointment: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: getAppointment - repository error: %v", ErrInternal, err)
	}
	return appointment, nil
}

func (s *Service) checkViewAccess(a *domain.Appointment, actor domain.Actor) error {
	if a.ClientID == actor.ID {
		return nil
	}
	if actor.IsStaff() && actor.CanManageSalon(a.SalonID) {
		return nil
	}
	return ErrPermissionDenied
}

// validateAssignments проверяет сотрудников и услуги через сервис салонов
// и возвращает суммарную длительность услуг в минутах.
func (s *Service) validateAssignments(ctx context.Context, salonID int64, workerIDs, serviceIDs []int64) (int, error) {
	salon, err := s.salonClient.GetSalon(ctx, salonID)
	if err != nil {
		if errors.Is(err, salonClient.ErrSalonNotFound) {
			return 0, fmt.Errorf("%w: salon id=%d not found", ErrInvalidInput, salonID)
		}
		s.logger.Error("validateAssignments: failed to get salon id=%d: %v", salonID, err)
		return 0, fmt.Errorf("%w: validateAssignments - get salon: %v", ErrInternal, err)
	}

	for _, workerID := range workerIDs {
		if !salon.HasWorker(workerID) {
			s.logger.Warn("validateAssignments: worker id=%d does not belong to salon=%d", workerID, salonID)
			return 0, fmt.Errorf("%w: worker id=%d", ErrWorkerNotInSalon, workerID)
		}
	}

	totalDuration := 0
	for _, serviceID := range serviceIDs {
		service, err := s.salonClient.GetService(ctx, salonID, serviceID)
		if err != nil {
			if errors.Is(err, salonClient.ErrServiceNotFound) {
				s.logger.Warn("validateAssignments: service id=%d not found in salon=%d", serviceID, salonID)
				return 0, fmt.Errorf("%w: service id=%d", ErrServiceNotFound, serviceID)
			}
			s.logger.Error("validateAssignments: failed to get service id=%d: %v", serviceID, err)
			return 0, fmt.Errorf("%w: validateAssignments - get service: %v", ErrInternal, err)
		}
		totalDuration += service.DurationMinutes
	}

	return totalDuration, nil
}

// mapDomainError переводит доменные ошибки агрегата в ошибки сервиса
func (s *Service) mapDomainError(id int64, err error) error {
	var invalidTransition *domain.InvalidTransitionError
	switch {
	case errors.As(err, &invalidTransition):
		s.logger.Warn("appointment id=%d: %v", id, err)
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	case errors.Is(err, domain.ErrWorkersRequired),
		errors.Is(err, domain.ErrServicesRequired),
		errors.Is(err, domain.ErrNoPreviousSchedule):
		s.logger.Warn("appointment id=%d: %v", id, err)
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, ErrSlotUnavailable), errors.Is(err, ErrInternal):
		return err
	default:
		s.logger.Error("appointment id=%d: unexpected domain error: %v", id, err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
