package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"medical-appointment-service/internal/delivery/dto"
	"medical-appointment-service/internal/delivery/http/middleware"
	"medical-appointment-service/internal/domain/entity"
	"medical-appointment-service/internal/domain/repository"
	"medical-appointment-service/internal/scheduling"
	"medical-appointment-service/internal/usecase"
	"medical-appointment-service/pkg/response"
	"medical-appointment-service/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Create(r.Context(), &req, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Appointment created successfully", appointment)
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Update(r.Context(), id, &req, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointment updated successfully", appointment)
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req dto.CancelAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Cancel(r.Context(), id, &req, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", appointment)
}

func (h *AppointmentHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req dto.RescheduleAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Reschedule(r.Context(), id, &req, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointment rescheduled successfully", appointment)
}

// Confirm is the only unauthenticated mutation: the token itself proves the
// caller received the confirmation link.
func (h *AppointmentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	if token == "" {
		response.BadRequest(w, "Confirmation token is required")
		return
	}

	appointment, err := h.appointmentUsecase.Confirm(r.Context(), token)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointment confirmed successfully", appointment)
}

func (h *AppointmentHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.appointmentUsecase.Start, "Appointment started successfully")
}

func (h *AppointmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	// Body is optional: completion without notes is valid
	var req dto.CompleteAppointmentRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body")
			return
		}
		if err := h.validator.Validate(&req); err != nil {
			response.ValidationError(w, h.validator.FormatValidationErrors(err))
			return
		}
	}

	appointment, err := h.appointmentUsecase.Complete(r.Context(), id, &req, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointment completed successfully", appointment)
}

func (h *AppointmentHandler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.appointmentUsecase.MarkNoShow, "Appointment marked as no-show")
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	list, err := h.appointmentUsecase.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", list)
}

func (h *AppointmentHandler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	list, err := h.appointmentUsecase.ListByPatient(r.Context(), patientID, filter)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", list)
}

func (h *AppointmentHandler) ListByDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	list, err := h.appointmentUsecase.ListByDoctor(r.Context(), doctorID, filter)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", list)
}

func (h *AppointmentHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	list, err := h.appointmentUsecase.Upcoming(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Upcoming appointments retrieved successfully", list)
}

func (h *AppointmentHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	history, err := h.appointmentUsecase.History(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointment history retrieved successfully", history)
}

func (h *AppointmentHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		response.BadRequest(w, "start must be an RFC3339 timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		response.BadRequest(w, "end must be an RFC3339 timestamp")
		return
	}
	if !end.After(start) {
		response.BadRequest(w, "end must be after start")
		return
	}

	availability, err := h.appointmentUsecase.CheckAvailability(r.Context(), doctorID, start, end)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", availability)
}

func (h *AppointmentHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		response.BadRequest(w, "date must be in YYYY-MM-DD format")
		return
	}

	duration := 30
	if raw := r.URL.Query().Get("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "duration must be a number of minutes")
			return
		}
	}

	slots, err := h.appointmentUsecase.AvailableSlots(r.Context(), doctorID, date, duration)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Available slots retrieved successfully", slots)
}

func (h *AppointmentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	status := entity.AppointmentStatus(r.URL.Query().Get("status"))
	if status == "" {
		response.BadRequest(w, "status is required")
		return
	}

	now := time.Now()
	from := now.AddDate(0, -1, 0)
	to := now
	var err error
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = time.Parse(time.RFC3339, raw); err != nil {
			response.BadRequest(w, "from must be an RFC3339 timestamp")
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = time.Parse(time.RFC3339, raw); err != nil {
			response.BadRequest(w, "to must be an RFC3339 timestamp")
			return
		}
	}

	stats, err := h.appointmentUsecase.CountByStatus(r.Context(), status, from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointment statistics retrieved successfully", stats)
}

func (h *AppointmentHandler) simpleTransition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id uuid.UUID, actor scheduling.Actor) (*dto.AppointmentResponse, error),
	message string,
) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	appointment, err := op(r.Context(), id, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, message, appointment)
}

func (h *AppointmentHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid appointment ID")
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps domain errors to HTTP statuses.
func (h *AppointmentHandler) writeError(w http.ResponseWriter, err error) {
	var transitionErr *scheduling.InvalidTransitionError

	switch {
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		response.NotFound(w, "Appointment not found")
	case errors.Is(err, usecase.ErrSchedulingConflict):
		response.Conflict(w, "Doctor is not available at the requested time")
	case errors.Is(err, usecase.ErrSlotContended):
		response.Conflict(w, "Another booking for this doctor is in progress, please retry")
	case errors.Is(err, repository.ErrVersionConflict):
		response.Conflict(w, "Appointment was modified concurrently, please reload and retry")
	case errors.As(err, &transitionErr):
		response.Conflict(w, transitionErr.Error())
	case errors.Is(err, scheduling.ErrActorNotAllowed):
		response.Forbidden(w, "You are not allowed to perform this action")
	case errors.Is(err, usecase.ErrStartNotInFuture),
		errors.Is(err, usecase.ErrTooFarInAdvance),
		errors.Is(err, usecase.ErrOutsideBusinessHours),
		errors.Is(err, usecase.ErrInvalidDuration),
		errors.Is(err, scheduling.ErrInvalidBusinessHours):
		response.BadRequest(w, err.Error())
	case errors.Is(err, repository.ErrStoreUnavailable):
		response.ServiceUnavailable(w, "Appointment store is temporarily unavailable")
	default:
		response.InternalServerError(w, "Failed to process appointment request")
	}
}

// parseListFilter reads status/from/to/page/limit query parameters.
func parseListFilter(r *http.Request) (repository.ListFilter, error) {
	filter := repository.ListFilter{Limit: 20}
	query := r.URL.Query()

	if raw := query.Get("status"); raw != "" {
		status := entity.AppointmentStatus(raw)
		filter.Status = &status
	}
	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.New("from must be an RFC3339 timestamp")
		}
		filter.From = &from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.New("to must be an RFC3339 timestamp")
		}
		filter.To = &to
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			return filter, errors.New("limit must be between 1 and 100")
		}
		filter.Limit = limit
	}
	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return filter, errors.New("page must be a positive number")
		}
		filter.Offset = (page - 1) * filter.Limit
	}

	return filter, nil
}
