package capacity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	capacityRepo "github.com/m04kA/SMC-SalonScheduler/internal/infra/storage/daycapacity"
	"github.com/m04kA/SMC-SalonScheduler/internal/service/capacity/models"
)

// Service сервис управления вместимостью по дням (Capacity Store).
// Изменение конфигурации не трогает существующие записи: закрытие слота
// с уже подтверждёнными записями не отменяет их - операторы отменяют явно.
type Service struct {
	capacityRepo CapacityRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса вместимости
func NewService(capacityRepo CapacityRepository, logger Logger) *Service {
	return &Service{
		capacityRepo: capacityRepo,
		logger:       logger,
	}
}

// GetEffective возвращает действующую конфигурацию на дату.
// Для неконфигурированной даты возвращает дефолт, не ошибку.
// Публичный метод - доступен без аутентификации.
func (s *Service) GetEffective(ctx context.Context, salonID int64, date time.Time) (*models.DayCapacityResponse, error) {
	capacity, err := s.effectiveCapacity(ctx, salonID, date)
	if err != nil {
		return nil, err
	}

	return models.FromDomainCapacity(capacity), nil
}

// Update частично обновляет конфигурацию дня.
// Доступно только акторам с правом управления вместимостью салона.
func (s *Service) Update(ctx context.Context, req *models.UpdateDayCapacityRequest) (*models.DayCapacityResponse, error) {
	s.logger.Info("Update: updating capacity for salon=%d, date=%s by actor=%d",
		req.SalonID, req.Date.Format(domain.DateFormat), req.Actor.ID)

	if err := s.checkManageAccess(req.Actor, req.SalonID); err != nil {
		s.logger.Warn("Update: access denied for actor=%d (role=%s, mode=%s) to salon=%d",
			req.Actor.ID, req.Actor.Role, req.Actor.Mode, req.SalonID)
		return nil, err
	}

	if err := validateUpdate(req); err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, err
	}

	capacity, err := s.effectiveCapacity(ctx, req.SalonID, req.Date)
	if err != nil {
		return nil, err
	}

	capacity.Apply(req.ToDomainPatch())

	updated, err := s.capacityRepo.Upsert(ctx, capacity)
	if err != nil {
		s.logger.Error("Update: repository error for salon=%d, date=%s: %v",
			req.SalonID, req.Date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: capacity updated for salon=%d, date=%s: max_slots=%d, is_closed=%t, allow_overbooking=%t, closed_slots=%d",
		updated.SalonID, updated.Date.Format(domain.DateFormat),
		updated.MaxSlots, updated.IsClosed, updated.AllowOverbooking, len(updated.ClosedSlots))
	return models.FromDomainCapacity(updated), nil
}

// ToggleSlotClosure переключает закрытие ровно одного слота на дату.
// Существующие записи в закрываемом слоте не отменяются.
func (s *Service) ToggleSlotClosure(ctx context.Context, req *models.ToggleSlotClosureRequest) (*models.ToggleSlotClosureResponse, error) {
	s.logger.Info("ToggleSlotClosure: toggling slot %s for salon=%d, date=%s by actor=%d",
		req.Time, req.SalonID, req.Date.Format(domain.DateFormat), req.Actor.ID)

	if err := s.checkManageAccess(req.Actor, req.SalonID); err != nil {
		s.logger.Warn("ToggleSlotClosure: access denied for actor=%d (role=%s, mode=%s) to salon=%d",
			req.Actor.ID, req.Actor.Role, req.Actor.Mode, req.SalonID)
		return nil, err
	}

	if err := req.Time.Validate(); err != nil {
		s.logger.Warn("ToggleSlotClosure: invalid slot time: %v", err)
		return nil, fmt.Errorf("%w: invalid slot time: %v", ErrInvalidInput, err)
	}

	capacity, err := s.effectiveCapacity(ctx, req.SalonID, req.Date)
	if err != nil {
		return nil, err
	}

	closed := capacity.ToggleSlotClosure(req.Time)

	updated, err := s.capacityRepo.Upsert(ctx, capacity)
	if err != nil {
		s.logger.Error("ToggleSlotClosure: repository error for salon=%d, date=%s: %v",
			req.SalonID, req.Date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: ToggleSlotClosure - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ToggleSlotClosure: slot %s on %s is now closed=%t (salon=%d)",
		req.Time, updated.Date.Format(domain.DateFormat), closed, updated.SalonID)
	return &models.ToggleSlotClosureResponse{
		Closed:   closed,
		Capacity: models.FromDomainCapacity(updated),
	}, nil
}

// Вспомогательные методы

// effectiveCapacity возвращает сохранённую конфигурацию или дефолтную.
// Отсутствие строки для даты - штатная ситуация, не ошибка.
func (s *Service) effectiveCapacity(ctx context.Context, salonID int64, date time.Time) (*domain.DayCapacity, error) {
	capacity, err := s.capacityRepo.GetBySalonAndDate(ctx, salonID, date)
	if err != nil {
		if errors.Is(err, capacityRepo.ErrCapacityNotFound) {
			return domain.DefaultDayCapacity(salonID, date), nil
		}
		s.logger.Error("effectiveCapacity: repository error for salon=%d, date=%s: %v",
			salonID, date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: effectiveCapacity - repository error: %v", ErrInternal, err)
	}
	return capacity, nil
}

// checkManageAccess проверяет право актора управлять вместимостью салона.
// Режим read-only блокирует операцию независимо от роли.
func (s *Service) checkManageAccess(actor domain.Actor, salonID int64) error {
	if !actor.Can(domain.CapManageCapacity) {
		return ErrPermissionDenied
	}
	if !actor.CanManageSalon(salonID) {
		return ErrPermissionDenied
	}
	return nil
}

func validateUpdate(req *models.UpdateDayCapacityRequest) error {
	if req.MaxSlots != nil && (*req.MaxSlots < domain.MinMaxSlots || *req.MaxSlots > domain.MaxMaxSlots) {
		return fmt.Errorf("%w: maxSlots must be between %d and %d",
			ErrInvalidInput, domain.MinMaxSlots, domain.MaxMaxSlots)
	}
	if req.ClosedSlots != nil {
		for _, t := range *req.ClosedSlots {
			if err := t.Validate(); err != nil {
				return fmt.Errorf("%w: invalid closed slot time: %v", ErrInvalidInput, err)
			}
		}
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	return nil
}
