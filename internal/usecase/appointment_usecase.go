package usecase

import (
	"context"
	"errors"
	"time"

	"medical-appointment-service/config"
	"medical-appointment-service/internal/client"
	"medical-appointment-service/internal/converter"
	"medical-appointment-service/internal/delivery/dto"
	"medical-appointment-service/internal/domain/entity"
	"medical-appointment-service/internal/domain/repository"
	"medical-appointment-service/internal/infrastructure/lock"
	"medical-appointment-service/internal/scheduling"
	"medical-appointment-service/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrSchedulingConflict   = errors.New("doctor is not available at the requested time")
	ErrSlotContended        = errors.New("another booking for this doctor is in progress, please retry")
	ErrStartNotInFuture     = errors.New("appointment start must be in the future")
	ErrTooFarInAdvance      = errors.New("appointment is beyond the advance booking window")
	ErrOutsideBusinessHours = errors.New("appointment must be within business hours")
	ErrInvalidDuration      = errors.New("appointment duration must be between 15 and 240 minutes")
)

const (
	minDurationMinutes = 15
	maxDurationMinutes = 240
)

// NotificationDispatcher submits a best-effort notification. Implemented by
// service.Dispatcher; a failed submission never fails the operation.
type NotificationDispatcher interface {
	Dispatch(kind service.NotificationKind, appointment *entity.Appointment)
}

type AppointmentUsecase interface {
	Create(ctx context.Context, req *dto.CreateAppointmentRequest, actor scheduling.Actor) (*dto.AppointmentResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentRequest, actor scheduling.Actor) (*dto.AppointmentResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, req *dto.CancelAppointmentRequest, actor scheduling.Actor) (*dto.AppointmentResponse, error)
	Reschedule(ctx context.Context, id uuid.UUID, req *dto.RescheduleAppointmentRequest, actor scheduling.Actor) (*dto.AppointmentResponse, error)
	Confirm(ctx context.Context, token string) (*dto.AppointmentResponse, error)
	Start(ctx context.Context, id uuid.UUID, actor scheduling.Actor) (*dto.AppointmentResponse, error)
	Complete(ctx context.Context, id uuid.UUID, req *dto.CompleteAppointmentRequest, actor scheduling.Actor) (*dto.AppointmentResponse, error)
	MarkNoShow(ctx context.Context, id uuid.UUID, actor scheduling.Actor) (*dto.AppointmentResponse, error)

	ListByPatient(ctx context.Context, patientID uuid.UUID, filter repository.ListFilter) (*dto.AppointmentListResponse, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, filter repository.ListFilter) (*dto.AppointmentListResponse, error)
	List(ctx context.Context, filter repository.ListFilter) (*dto.AppointmentListResponse, error)
	Upcoming(ctx context.Context) (*dto.AppointmentListResponse, error)
	History(ctx context.Context, id uuid.UUID) (*dto.HistoryListResponse, error)

	CheckAvailability(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (*dto.AvailabilityResponse, error)
	AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time, durationMinutes int) (*dto.SlotListResponse, error)
	CountByStatus(ctx context.Context, status entity.AppointmentStatus, from, to time.Time) (*dto.AppointmentStatsResponse, error)
}

type appointmentUsecase struct {
	log             *logrus.Logger
	clock           scheduling.Clock
	cfg             config.SchedulingConfig
	appointmentRepo repository.AppointmentRepository
	historyRepo     repository.AppointmentHistoryRepository
	tx              repository.Transactor
	locker          lock.DoctorLocker
	userDirectory   client.UserDirectory
	dispatcher      NotificationDispatcher
}

func NewAppointmentUsecase(
	log *logrus.Logger,
	clock scheduling.Clock,
	cfg config.SchedulingConfig,
	appointmentRepo repository.AppointmentRepository,
	historyRepo repository.AppointmentHistoryRepository,
	tx repository.Transactor,
	locker lock.DoctorLocker,
	userDirectory client.UserDirectory,
	dispatcher NotificationDispatcher,
) AppointmentUsecase {
	return &appointmentUsecase{
		log:             log,
		clock:           clock,
		cfg:             cfg,
		appointmentRepo: appointmentRepo,
		historyRepo:     historyRepo,
		tx:              tx,
		locker:          locker,
		userDirectory:   userDirectory,
		dispatcher:      dispatcher,
	}
}

// Create books a new appointment in SCHEDULED with a fresh confirmation
// token. The conflict check and the insert run inside a per-doctor lock and
// one transaction so two concurrent creates cannot double-book a slot.
func (u *appointmentUsecase) Create(ctx context.Context, req *dto.CreateAppointmentRequest, actor scheduling.Actor) (*dto.AppointmentResponse, error) {
	now := u.clock.Now()

	if err := u.validateCreateWindow(now, req.StartTime, req.DurationMinutes); err != nil {
		return nil, err
	}

	token := uuid.NewString()
	appointment := &entity.Appointment{
		PatientID:         req.PatientID,
		DoctorID:          req.DoctorID,
		MedicalCenterID:   req.MedicalCenterID,
		SpecialityID:      req.SpecialityID,
		StartTime:         req.StartTime,
		DurationMinutes:   req.DurationMinutes,
		Status:            entity.StatusScheduled,
		Type:              entity.AppointmentType(req.Type),
		Reason:            req.Reason,
		Notes:             req.Notes,
		PatientPhone:      req.PatientPhone,
		PatientEmail:      req.PatientEmail,
		ConfirmationToken: &token,
		CreatedBy:         actor.ID,
		UpdatedBy:         actor.ID,
		Version:           1,
	}

	u.defaultContactInfo(ctx, appointment)

	err := u.locker.WithDoctorLock(ctx, req.DoctorID, func(lockCtx context.Context) error {
		return u.tx.InTransaction(lockCtx, func(txCtx context.Context) error {
			conflicts, err := u.appointmentRepo.FindConflicting(txCtx, req.DoctorID, appointment.StartTime, appointment.EndTime(), uuid.Nil)
			if err != nil {
				return err
			}
			if len(conflicts) > 0 {
				return ErrSchedulingConflict
			}

			if err := u.appointmentRepo.Create(txCtx, appointment); err != nil {
				return err
			}

			return u.historyRepo.Append(txCtx, u.historyEntry(appointment, entity.HistoryActionCreated, "Appointment created", actor, nil))
		})
	})
	if err != nil {
		if errors.Is(err, lock.ErrDoctorLockNotAcquired) {
			return nil, ErrSlotContended
		}
		if !errors.Is(err, ErrSchedulingConflict) {
			u.log.Warnf("Failed to create appointment for doctor %s: %+v", req.DoctorID, err)
		}
		return nil, err
	}

	u.dispatcher.Dispatch(service.NotificationCreated, appointment)

	u.log.Infof("Appointment created: id=%s doctor=%s start=%s", appointment.ID, appointment.DoctorID, appointment.StartTime)
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) Get(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appointment), nil
}

// Update applies the provided fields only; unset fields are untouched. A
// changed time window re-runs conflict detection excluding the appointment's
// own id.
func (u *appointmentUsecase) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentRequest, actor scheduling.Actor) (*dto.AppointmentResponse, error) {
	appointment, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := scheduling.EnsureMutable(appointment); err != nil {
		return nil, err
	}

	previousStart := appointment.StartTime
	windowChanged := u.applyUpdates(appointment, req)
	if req.DurationMinutes != nil &&
		(*req.DurationMinutes < minDurationMinutes || *req.DurationMinutes > maxDurationMinutes) {
		return nil, ErrInvalidDuration
	}
	appointment.UpdatedBy = actor.ID

	persist := func(txCtx context.Context) error {
		if windowChanged {
			conflicts, err := u.appointmentRepo.FindConflicting(txCtx, appointment.DoctorID, appointment.StartTime, appointment.EndTime(), appointment.ID)
			if err != nil {
				return err
			}
			if len(conflicts) > 0 {
				return ErrSchedulingConflict
			}
		}

		if err := u.appointmentRepo.Save(txCtx, appointment); err != nil {
			return err
		}

		entry := u.historyEntry(appointment, entity.HistoryActionUpdated, "Appointment updated", actor, nil)
		if windowChanged && !previousStart.Equal(appointment.StartTime) {
			entry.PreviousStart = &previousStart
			newStart := appointment.StartTime
			entry.NewStart = &newStart
		}
		return u.historyRepo.Append(txCtx, entry)
	}

	if windowChanged {
		err = u.locker.WithDoctorLock(ctx, appointment.DoctorID, func(lockCtx context.Context) error {
			return u.tx.InTransaction(lockCtx, persist)
		})
	} else {
		err = u.tx.InTransaction(ctx, persist)
	}
	if err != nil {
		if errors.Is(err, lock.ErrDoctorLockNotAcquired) {
			return nil, ErrSlotContended
		}
		return nil, err
	}

	u.dispatcher.Dispatch(service.NotificationUpdated, appointment)
	return converter.AppointmentToResponse(appointment), nil
}

// Cancel requires the 24-hour cutoff; a late or terminal cancellation fails
// with an invalid-transition error.
func (u *appointmentUsecase) Cancel(ctx context.Context, id uuid.UUID, req *dto.CancelAppointmentRequest, actor scheduling.Actor) (*dto.AppointmentResponse, error) {
	appointment, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	if !appointment.CanBeCancelled(now, u.cfg.CancellationCutoff) {
		return nil, &scheduling.InvalidTransitionError{From: appointment.Status, To: entity.StatusCancelled}
	}
	if !scheduling.AllowedActor(entity.StatusCancelled, actor.Role) {
		return nil, scheduling.ErrActorNotAllowed
	}

	previousStatus := appointment.Status
	cancelledAt := now
	appointment.Status = entity.StatusCancelled
	appointment.CancellationReason = req.Reason
	appointment.CancelledBy = actor.ID
	appointment.CancelledAt = &cancelledAt
	appointment.UpdatedBy = actor.ID

	err = u.tx.InTransaction(ctx, func(txCtx context.Context) error {
		if err := u.appointmentRepo.Save(txCtx, appointment); err != nil {
			return err
		}
		entry := u.historyEntry(appointment, entity.HistoryActionCancelled, "Appointment cancelled: "+req.Reason, actor, &previousStatus)
		return u.historyRepo.Append(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	u.dispatcher.Dispatch(service.NotificationCancelled, appointment)

	u.log.Infof("Appointment cancelled: id=%s by=%s", appointment.ID, actor.ID)
	return converter.AppointmentToResponse(appointment), nil
}

// Reschedule moves the appointment to a new start, resets the reminder flag
// and returns a CONFIRMED appointment to SCHEDULED with a fresh token so the
// patient confirms the new time.
func (u *appointmentUsecase) Reschedule(ctx context.Context, id uuid.UUID, req *dto.RescheduleAppointmentRequest, actor scheduling.Actor) (*dto.AppointmentResponse, error) {
	appointment, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	if !appointment.CanBeRescheduled(now, u.cfg.CancellationCutoff) {
		return nil, &scheduling.InvalidTransitionError{From: appointment.Status, To: entity.StatusRescheduled}
	}
	if actor.Role != scheduling.RolePatient && actor.Role != scheduling.RoleStaff {
		return nil, scheduling.ErrActorNotAllowed
	}
	if !req.NewStartTime.After(now) {
		return nil, ErrStartNotInFuture
	}

	previousStart := appointment.StartTime
	previousStatus := appointment.Status

	err = u.locker.WithDoctorLock(ctx, appointment.DoctorID, func(lockCtx context.Context) error {
		return u.tx.InTransaction(lockCtx, func(txCtx context.Context) error {
			newEnd := req.NewStartTime.Add(appointment.Duration())
			conflicts, err := u.appointmentRepo.FindConflicting(txCtx, appointment.DoctorID, req.NewStartTime, newEnd, appointment.ID)
			if err != nil {
				return err
			}
			if len(conflicts) > 0 {
				return ErrSchedulingConflict
			}

			appointment.StartTime = req.NewStartTime
			appointment.ReminderSent = false
			appointment.UpdatedBy = actor.ID
			if appointment.Status == entity.StatusConfirmed {
				token := uuid.NewString()
				appointment.Status = entity.StatusScheduled
				appointment.ConfirmationToken = &token
			}

			if err := u.appointmentRepo.Save(txCtx, appointment); err != nil {
				return err
			}

			entry := u.historyEntry(appointment, entity.HistoryActionRescheduled, "Appointment rescheduled", actor, &previousStatus)
			entry.PreviousStart = &previousStart
			newStart := appointment.StartTime
			entry.NewStart = &newStart
			return u.historyRepo.Append(txCtx, entry)
		})
	})
	if err != nil {
		if errors.Is(err, lock.ErrDoctorLockNotAcquired) {
			return nil, ErrSlotContended
		}
		return nil, err
	}

	u.dispatcher.Dispatch(service.NotificationRescheduled, appointment)

	u.log.Infof("Appointment rescheduled: id=%s from=%s to=%s", appointment.ID, previousStart, appointment.StartTime)
	return converter.AppointmentToResponse(appointment), nil
}

// Confirm looks up the appointment by its single-use token, clears the token
// and moves it to CONFIRMED. No notification is emitted.
func (u *appointmentUsecase) Confirm(ctx context.Context, token string) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByConfirmationToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	if err := scheduling.EnsureTransition(appointment.Status, entity.StatusConfirmed, scheduling.RolePatient); err != nil {
		return nil, err
	}

	previousStatus := appointment.Status
	appointment.Status = entity.StatusConfirmed
	appointment.ConfirmationToken = nil
	appointment.UpdatedBy = "PATIENT_CONFIRMATION"

	err = u.tx.InTransaction(ctx, func(txCtx context.Context) error {
		if err := u.appointmentRepo.Save(txCtx, appointment); err != nil {
			return err
		}
		actor := scheduling.Actor{ID: "PATIENT_CONFIRMATION", Role: scheduling.RolePatient}
		entry := u.historyEntry(appointment, entity.HistoryActionConfirmed, "Appointment confirmed by patient", actor, &previousStatus)
		return u.historyRepo.Append(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Appointment confirmed: id=%s", appointment.ID)
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) Start(ctx context.Context, id uuid.UUID, actor scheduling.Actor) (*dto.AppointmentResponse, error) {
	return u.transition(ctx, id, entity.StatusInProgress, entity.HistoryActionStarted, "Appointment started", actor, nil)
}

func (u *appointmentUsecase) Complete(ctx context.Context, id uuid.UUID, req *dto.CompleteAppointmentRequest, actor scheduling.Actor) (*dto.AppointmentResponse, error) {
	return u.transition(ctx, id, entity.StatusCompleted, entity.HistoryActionCompleted, "Appointment completed", actor, func(a *entity.Appointment) {
		if req.DoctorNotes != "" {
			a.DoctorNotes = req.DoctorNotes
		}
	})
}

func (u *appointmentUsecase) MarkNoShow(ctx context.Context, id uuid.UUID, actor scheduling.Actor) (*dto.AppointmentResponse, error) {
	return u.transition(ctx, id, entity.StatusNoShow, entity.HistoryActionNoShow, "Patient did not show up", actor, nil)
}

// transition handles the plain status moves (start/complete/no-show) that
// share the same load-validate-save-history shape.
func (u *appointmentUsecase) transition(ctx context.Context, id uuid.UUID, to entity.AppointmentStatus, action, description string, actor scheduling.Actor, mutate func(*entity.Appointment)) (*dto.AppointmentResponse, error) {
	appointment, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := scheduling.EnsureTransition(appointment.Status, to, actor.Role); err != nil {
		return nil, err
	}

	previousStatus := appointment.Status
	appointment.Status = to
	appointment.UpdatedBy = actor.ID
	if mutate != nil {
		mutate(appointment)
	}

	err = u.tx.InTransaction(ctx, func(txCtx context.Context) error {
		if err := u.appointmentRepo.Save(txCtx, appointment); err != nil {
			return err
		}
		return u.historyRepo.Append(txCtx, u.historyEntry(appointment, action, description, actor, &previousStatus))
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Appointment %s: id=%s by=%s", action, appointment.ID, actor.ID)
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) ListByPatient(ctx context.Context, patientID uuid.UUID, filter repository.ListFilter) (*dto.AppointmentListResponse, error) {
	appointments, total, err := u.appointmentRepo.FindByPatientID(ctx, patientID, filter)
	if err != nil {
		return nil, err
	}
	return &dto.AppointmentListResponse{Appointments: converter.AppointmentsToResponses(appointments), Total: total}, nil
}

func (u *appointmentUsecase) ListByDoctor(ctx context.Context, doctorID uuid.UUID, filter repository.ListFilter) (*dto.AppointmentListResponse, error) {
	appointments, total, err := u.appointmentRepo.FindByDoctorID(ctx, doctorID, filter)
	if err != nil {
		return nil, err
	}
	return &dto.AppointmentListResponse{Appointments: converter.AppointmentsToResponses(appointments), Total: total}, nil
}

func (u *appointmentUsecase) List(ctx context.Context, filter repository.ListFilter) (*dto.AppointmentListResponse, error) {
	appointments, total, err := u.appointmentRepo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.AppointmentListResponse{Appointments: converter.AppointmentsToResponses(appointments), Total: total}, nil
}

func (u *appointmentUsecase) Upcoming(ctx context.Context) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindUpcoming(ctx, u.clock.Now())
	if err != nil {
		return nil, err
	}
	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        int64(len(appointments)),
	}, nil
}

func (u *appointmentUsecase) History(ctx context.Context, id uuid.UUID) (*dto.HistoryListResponse, error) {
	appointment, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := u.historyRepo.FindByAppointmentID(ctx, appointment.ID)
	if err != nil {
		return nil, err
	}
	return &dto.HistoryListResponse{Entries: converter.HistoryToResponses(entries), Total: len(entries)}, nil
}

func (u *appointmentUsecase) CheckAvailability(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (*dto.AvailabilityResponse, error) {
	conflicts, err := u.appointmentRepo.FindConflicting(ctx, doctorID, start, end, uuid.Nil)
	if err != nil {
		return nil, err
	}
	return &dto.AvailabilityResponse{
		DoctorID:  doctorID,
		StartTime: start,
		EndTime:   end,
		Available: len(conflicts) == 0,
	}, nil
}

func (u *appointmentUsecase) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time, durationMinutes int) (*dto.SlotListResponse, error) {
	if durationMinutes < minDurationMinutes || durationMinutes > maxDurationMinutes {
		return nil, ErrInvalidDuration
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	existing, err := u.appointmentRepo.FindByDoctorBetween(ctx, doctorID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	slots, err := scheduling.FindAvailableSlots(date, durationMinutes, u.cfg.BusinessHours(), u.cfg.SlotStep, existing)
	if err != nil {
		return nil, err
	}

	return &dto.SlotListResponse{
		DoctorID:        doctorID,
		Date:            dayStart.Format("2006-01-02"),
		DurationMinutes: durationMinutes,
		Slots:           slots,
		Total:           len(slots),
	}, nil
}

func (u *appointmentUsecase) CountByStatus(ctx context.Context, status entity.AppointmentStatus, from, to time.Time) (*dto.AppointmentStatsResponse, error) {
	count, err := u.appointmentRepo.CountByStatus(ctx, status, from, to)
	if err != nil {
		return nil, err
	}
	return &dto.AppointmentStatsResponse{Status: string(status), From: from, To: to, Count: count}, nil
}

// load fetches an appointment or fails with ErrAppointmentNotFound.
func (u *appointmentUsecase) load(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return appointment, nil
}

func (u *appointmentUsecase) validateCreateWindow(now, start time.Time, durationMinutes int) error {
	if durationMinutes < minDurationMinutes || durationMinutes > maxDurationMinutes {
		return ErrInvalidDuration
	}
	if !start.After(now) {
		return ErrStartNotInFuture
	}
	if start.After(now.AddDate(0, 0, u.cfg.AdvanceBookingDays)) {
		return ErrTooFarInAdvance
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	if !u.cfg.BusinessHours().Contains(start, end) {
		return ErrOutsideBusinessHours
	}
	return nil
}

// defaultContactInfo fills missing contact channels from the user directory.
// Lookup failure is logged, never fatal: contact data is an enrichment.
func (u *appointmentUsecase) defaultContactInfo(ctx context.Context, appointment *entity.Appointment) {
	if appointment.PatientPhone != "" && appointment.PatientEmail != "" {
		return
	}
	patient, err := u.userDirectory.GetUser(ctx, appointment.PatientID)
	if err != nil {
		u.log.Warnf("Failed to resolve patient %s contact info: %+v", appointment.PatientID, err)
		return
	}
	if appointment.PatientPhone == "" {
		appointment.PatientPhone = patient.Phone
	}
	if appointment.PatientEmail == "" {
		appointment.PatientEmail = patient.Email
	}
}

func (u *appointmentUsecase) historyEntry(appointment *entity.Appointment, action, description string, actor scheduling.Actor, previousStatus *entity.AppointmentStatus) *entity.AppointmentHistory {
	entry := &entity.AppointmentHistory{
		AppointmentID: appointment.ID,
		Action:        action,
		Description:   description,
		PerformedBy:   actor.ID,
		PerformedAt:   u.clock.Now(),
	}
	if previousStatus != nil {
		prev := *previousStatus
		entry.PreviousStatus = &prev
		status := appointment.Status
		entry.NewStatus = &status
	}
	return entry
}

// applyUpdates copies the provided fields onto the appointment and reports
// whether the time window changed.
func (u *appointmentUsecase) applyUpdates(appointment *entity.Appointment, req *dto.UpdateAppointmentRequest) bool {
	windowChanged := false
	if req.StartTime != nil && !req.StartTime.Equal(appointment.StartTime) {
		appointment.StartTime = *req.StartTime
		windowChanged = true
	}
	if req.DurationMinutes != nil && *req.DurationMinutes != appointment.DurationMinutes {
		appointment.DurationMinutes = *req.DurationMinutes
		windowChanged = true
	}
	if req.Type != nil {
		appointment.Type = entity.AppointmentType(*req.Type)
	}
	if req.Reason != nil {
		appointment.Reason = *req.Reason
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}
	if req.DoctorNotes != nil {
		appointment.DoctorNotes = *req.DoctorNotes
	}
	if req.PatientPhone != nil {
		appointment.PatientPhone = *req.PatientPhone
	}
	if req.PatientEmail != nil {
		appointment.PatientEmail = *req.PatientEmail
	}
	return windowChanged
}
