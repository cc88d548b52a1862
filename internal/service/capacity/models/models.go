package models

import (
	"time"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

// Request модели

// UpdateDayCapacityRequest частичное обновление конфигурации дня.
// Nil-поля сохраняют текущее (или дефолтное) значение.
type UpdateDayCapacityRequest struct {
	Actor   domain.Actor
	SalonID int64
	Date    time.Time

	MaxSlots         *int
	ClosedSlots      *[]types.TimeString
	IsClosed         *bool
	AllowOverbooking *bool
}

// ToDomainPatch конвертирует request в доменный patch
func (r *UpdateDayCapacityRequest) ToDomainPatch() domain.DayCapacityPatch {
	return domain.DayCapacityPatch{
		MaxSlots:         r.MaxSlots,
		ClosedSlots:      r.ClosedSlots,
		IsClosed:         r.IsClosed,
		AllowOverbooking: r.AllowOverbooking,
	}
}

// ToggleSlotClosureRequest запрос на переключение закрытия одного слота
type ToggleSlotClosureRequest struct {
	Actor   domain.Actor
	SalonID int64
	Date    time.Time
	Time    types.TimeString
}

// Response модели

// DayCapacityResponse конфигурация дня для API
type DayCapacityResponse struct {
	SalonID          int64    `json:"salonId"`
	Date             string   `json:"date"` // "2025-10-15"
	MaxSlots         int      `json:"maxSlots"`
	ClosedSlots      []string `json:"closedSlots"`
	IsClosed         bool     `json:"isClosed"`
	AllowOverbooking bool     `json:"allowOverbooking"`
}

// ToggleSlotClosureResponse результат переключения закрытия слота
type ToggleSlotClosureResponse struct {
	Closed   bool                 `json:"closed"` // Состояние слота после переключения
	Capacity *DayCapacityResponse `json:"capacity"`
}

// FromDomainCapacity конвертирует доменную модель в response
func FromDomainCapacity(c *domain.DayCapacity) *DayCapacityResponse {
	closedSlots := make([]string, 0, len(c.ClosedSlots))
	for _, t := range c.ClosedSlots {
		closedSlots = append(closedSlots, string(t))
	}

	return &DayCapacityResponse{
		SalonID:          c.SalonID,
		Date:             c.Date.Format(domain.DateFormat),
		MaxSlots:         c.MaxSlots,
		ClosedSlots:      closedSlots,
		IsClosed:         c.IsClosed,
		AllowOverbooking: c.AllowOverbooking,
	}
}
