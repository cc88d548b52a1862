package update_day_capacity

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-SalonScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-SalonScheduler/internal/service/capacity"
)

const (
	msgInvalidSalonID     = "некорректный ID салона"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректная дата, ожидается YYYY-MM-DD"
	msgForbidden          = "недостаточно прав для управления вместимостью салона"
	msgInvalidInput       = "некорректные параметры конфигурации"
)

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

// Handle PUT /api/v1/salons/{salonId}/capacity
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	salonID, err := strconv.ParseInt(vars["salonId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /salons/{id}/capacity - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Error("PUT /salons/{id}/capacity - No actor in request context")
		handlers.RespondInternalError(w)
		return
	}

	var req UpdateDayCapacityRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /salons/{id}/capacity - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq, err := req.ToServiceRequest(salonID, actor)
	if err != nil {
		h.logger.Warn("PUT /salons/{id}/capacity - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.Update(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, capacity.ErrPermissionDenied):
			h.logger.Warn("PUT /salons/{id}/capacity - Access denied: salon_id=%d, actor_id=%d",
				salonID, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, capacity.ErrInvalidInput):
			h.logger.Warn("PUT /salons/{id}/capacity - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PUT /salons/{id}/capacity - Failed to update capacity: salon_id=%d, error=%v",
				salonID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /salons/{id}/capacity - Capacity updated: salon_id=%d, date=%s, actor_id=%d",
		salonID, req.Date, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
