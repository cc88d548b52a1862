package confirm_appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-SalonScheduler/internal/api/middleware"
	confirmAppointment "github.com/m04kA/SMC-SalonScheduler/internal/usecase/confirm_appointment"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgNotFound             = "запись не найдена"
	msgForbidden            = "недостаточно прав для подтверждения записи"
	msgInvalidTransition    = "запись нельзя подтвердить из текущего статуса"
	msgSlotUnavailable      = "слот записи закрыт, подтверждение невозможно"
	msgCapacityExceeded     = "слот переполнен, подтверждение невозможно"
	msgWorkersRequired      = "для подтверждения нужен хотя бы один назначенный сотрудник"
)

type Handler struct {
	useCase ConfirmAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase ConfirmAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/appointments/{appointmentId}/confirm
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseInt(vars["appointmentId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/confirm - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Error("PATCH /appointments/{id}/confirm - No actor in request context")
		handlers.RespondInternalError(w)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &confirmAppointment.Request{
		Actor:         actor,
		AppointmentID: appointmentID,
	})
	if err != nil {
		switch {
		case errors.Is(err, confirmAppointment.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id}/confirm - Appointment not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, confirmAppointment.ErrPermissionDenied):
			h.logger.Warn("PATCH /appointments/{id}/confirm - Access denied: appointment_id=%d, actor_id=%d",
				appointmentID, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, confirmAppointment.ErrInvalidTransition):
			h.logger.Warn("PATCH /appointments/{id}/confirm - Invalid transition: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, confirmAppointment.ErrSlotUnavailable):
			h.logger.Warn("PATCH /appointments/{id}/confirm - Slot closed: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgSlotUnavailable)

		case errors.Is(err, confirmAppointment.ErrCapacityExceeded):
			h.logger.Warn("PATCH /appointments/{id}/confirm - Capacity exceeded: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgCapacityExceeded)

		case errors.Is(err, confirmAppointment.ErrWorkersRequired):
			h.logger.Warn("PATCH /appointments/{id}/confirm - No workers assigned: appointment_id=%d", appointmentID)
			handlers.RespondBadRequest(w, msgWorkersRequired)

		default:
			h.logger.Error("PATCH /appointments/{id}/confirm - Failed to confirm: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/confirm - Appointment confirmed: appointment_id=%d, actor_id=%d",
		appointmentID, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
