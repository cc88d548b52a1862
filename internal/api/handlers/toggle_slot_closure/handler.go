package toggle_slot_closure

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-SalonScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	"github.com/m04kA/SMC-SalonScheduler/internal/service/capacity"
	"github.com/m04kA/SMC-SalonScheduler/internal/service/capacity/models"
	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

const (
	msgInvalidSalonID     = "некорректный ID салона"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateOrTime  = "некорректная дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgForbidden          = "недостаточно прав для управления вместимостью салона"
)

// ToggleSlotClosureRequest HTTP request model
type ToggleSlotClosureRequest struct {
	Date string `json:"date"` // "2025-10-15"
	Time string `json:"time"` // "09:00"
}

type Handler struct {
	service CapacityService
	logger  Logger
}

func NewHandler(service CapacityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/salons/{salonId}/capacity/closures
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	salonID, err := strconv.ParseInt(vars["salonId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /salons/{id}/capacity/closures - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Error("PATCH /salons/{id}/capacity/closures - No actor in request context")
		handlers.RespondInternalError(w)
		return
	}

	var req ToggleSlotClosureRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /salons/{id}/capacity/closures - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		h.logger.Warn("PATCH /salons/{id}/capacity/closures - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}
	slotTime, err := types.NewTimeStringFromString(req.Time)
	if err != nil {
		h.logger.Warn("PATCH /salons/{id}/capacity/closures - Invalid time: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.service.ToggleSlotClosure(r.Context(), &models.ToggleSlotClosureRequest{
		Actor:   actor,
		SalonID: salonID,
		Date:    date,
		Time:    slotTime,
	})
	if err != nil {
		switch {
		case errors.Is(err, capacity.ErrPermissionDenied):
			h.logger.Warn("PATCH /salons/{id}/capacity/closures - Access denied: salon_id=%d, actor_id=%d",
				salonID, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, capacity.ErrInvalidInput):
			h.logger.Warn("PATCH /salons/{id}/capacity/closures - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDateOrTime)

		default:
			h.logger.Error("PATCH /salons/{id}/capacity/closures - Failed to toggle: salon_id=%d, error=%v",
				salonID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /salons/{id}/capacity/closures - Slot %s on %s toggled: closed=%t, salon_id=%d, actor_id=%d",
		req.Time, req.Date, result.Closed, salonID, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
