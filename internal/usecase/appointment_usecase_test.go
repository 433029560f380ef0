package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"medical-appointment-service/config"
	"medical-appointment-service/internal/client"
	"medical-appointment-service/internal/delivery/dto"
	"medical-appointment-service/internal/domain/entity"
	"medical-appointment-service/internal/domain/repository"
	"medical-appointment-service/internal/scheduling"
	"medical-appointment-service/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Test fixtures

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

// memoryAppointmentRepo is an in-memory AppointmentRepository enforcing the
// same version CAS contract as the store-backed implementation.
type memoryAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]entity.Appointment
}

func newMemoryAppointmentRepo() *memoryAppointmentRepo {
	return &memoryAppointmentRepo{appointments: map[uuid.UUID]entity.Appointment{}}
}

func (r *memoryAppointmentRepo) Create(ctx context.Context, a *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Version == 0 {
		a.Version = 1
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.appointments[a.ID] = *a
	return nil
}

func (r *memoryAppointmentRepo) Save(ctx context.Context, a *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.appointments[a.ID]
	if !ok || stored.Version != a.Version {
		return repository.ErrVersionConflict
	}
	a.Version++
	a.UpdatedAt = time.Now()
	r.appointments[a.ID] = *a
	return nil
}

func (r *memoryAppointmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.appointments[id]; ok {
		copied := a
		return &copied, nil
	}
	return nil, nil
}

func (r *memoryAppointmentRepo) FindByConfirmationToken(ctx context.Context, token string) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appointments {
		if a.ConfirmationToken != nil && *a.ConfirmationToken == token {
			copied := a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryAppointmentRepo) FindConflicting(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var candidates []entity.Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID {
			candidates = append(candidates, a)
		}
	}
	return scheduling.ConflictingAppointments(candidates, start, end, excludeID), nil
}

func (r *memoryAppointmentRepo) FindByDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []entity.Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && !a.StartTime.Before(from) && a.StartTime.Before(to) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *memoryAppointmentRepo) FindByPatientID(ctx context.Context, patientID uuid.UUID, filter repository.ListFilter) ([]entity.Appointment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []entity.Appointment
	for _, a := range r.appointments {
		if a.PatientID == patientID {
			result = append(result, a)
		}
	}
	return result, int64(len(result)), nil
}

func (r *memoryAppointmentRepo) FindByDoctorID(ctx context.Context, doctorID uuid.UUID, filter repository.ListFilter) ([]entity.Appointment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []entity.Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID {
			result = append(result, a)
		}
	}
	return result, int64(len(result)), nil
}

func (r *memoryAppointmentRepo) Find(ctx context.Context, filter repository.ListFilter) ([]entity.Appointment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []entity.Appointment
	for _, a := range r.appointments {
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		result = append(result, a)
	}
	return result, int64(len(result)), nil
}

func (r *memoryAppointmentRepo) FindUpcoming(ctx context.Context, now time.Time) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []entity.Appointment
	for _, a := range r.appointments {
		if a.IsUpcoming(now) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *memoryAppointmentRepo) FindDueForReminder(ctx context.Context, from, to time.Time) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []entity.Appointment
	for _, a := range r.appointments {
		if a.ReminderSent {
			continue
		}
		if a.Status != entity.StatusScheduled && a.Status != entity.StatusConfirmed {
			continue
		}
		if !a.StartTime.Before(from) && a.StartTime.Before(to) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *memoryAppointmentRepo) CountByStatus(ctx context.Context, status entity.AppointmentStatus, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, a := range r.appointments {
		if a.Status == status && !a.StartTime.Before(from) && a.StartTime.Before(to) {
			count++
		}
	}
	return count, nil
}

type memoryHistoryRepo struct {
	mu      sync.Mutex
	entries []entity.AppointmentHistory
}

func (r *memoryHistoryRepo) Append(ctx context.Context, entry *entity.AppointmentHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = int64(len(r.entries) + 1)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memoryHistoryRepo) FindByAppointmentID(ctx context.Context, appointmentID uuid.UUID) ([]entity.AppointmentHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []entity.AppointmentHistory
	for _, e := range r.entries {
		if e.AppointmentID == appointmentID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *memoryHistoryRepo) actionsFor(appointmentID uuid.UUID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var actions []string
	for _, e := range r.entries {
		if e.AppointmentID == appointmentID {
			actions = append(actions, e.Action)
		}
	}
	return actions
}

type passthroughTransactor struct{}

func (passthroughTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// mutexLocker serializes critical sections per doctor the way the Redis
// locker does in production.
type mutexLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newMutexLocker() *mutexLocker {
	return &mutexLocker{locks: map[uuid.UUID]*sync.Mutex{}}
}

func (l *mutexLocker) WithDoctorLock(ctx context.Context, doctorID uuid.UUID, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	doctorMu, ok := l.locks[doctorID]
	if !ok {
		doctorMu = &sync.Mutex{}
		l.locks[doctorID] = doctorMu
	}
	l.mu.Unlock()

	doctorMu.Lock()
	defer doctorMu.Unlock()
	return fn(ctx)
}

type recordingDispatcher struct {
	mu    sync.Mutex
	kinds []service.NotificationKind
}

func (d *recordingDispatcher) Dispatch(kind service.NotificationKind, appointment *entity.Appointment) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.kinds = append(d.kinds, kind)
}

func (d *recordingDispatcher) dispatched() []service.NotificationKind {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]service.NotificationKind(nil), d.kinds...)
}

type stubUserDirectory struct{ err error }

func (s *stubUserDirectory) GetUser(ctx context.Context, id uuid.UUID) (*client.UserInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &client.UserInfo{
		ID:        id,
		FirstName: "Jordan",
		LastName:  "Reyes",
		Email:     "jordan.reyes@example.com",
		Phone:     "+34600111222",
	}, nil
}

type usecaseFixture struct {
	usecase    AppointmentUsecase
	repo       *memoryAppointmentRepo
	history    *memoryHistoryRepo
	dispatcher *recordingDispatcher
	clock      *fixedClock
	cfg        config.SchedulingConfig
}

func newFixture(t *testing.T) *usecaseFixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	clock := &fixedClock{now: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)}
	cfg := config.SchedulingConfig{
		BusinessHoursStart: "08:00",
		BusinessHoursEnd:   "18:00",
		SlotStep:           30 * time.Minute,
		AdvanceBookingDays: 30,
		CancellationCutoff: 24 * time.Hour,
	}

	repo := newMemoryAppointmentRepo()
	history := &memoryHistoryRepo{}
	dispatcher := &recordingDispatcher{}

	uc := NewAppointmentUsecase(
		log,
		clock,
		cfg,
		repo,
		history,
		passthroughTransactor{},
		newMutexLocker(),
		&stubUserDirectory{},
		dispatcher,
	)

	return &usecaseFixture{
		usecase:    uc,
		repo:       repo,
		history:    history,
		dispatcher: dispatcher,
		clock:      clock,
		cfg:        cfg,
	}
}

func createRequest(doctorID uuid.UUID, start time.Time) *dto.CreateAppointmentRequest {
	return &dto.CreateAppointmentRequest{
		PatientID:       uuid.New(),
		DoctorID:        doctorID,
		MedicalCenterID: uuid.New(),
		SpecialityID:    uuid.New(),
		StartTime:       start,
		DurationMinutes: 30,
		Type:            string(entity.TypeConsultation),
		Reason:          "Annual check-up",
	}
}

var patientActor = scheduling.Actor{ID: "patient-1", Role: scheduling.RolePatient}
var doctorActor = scheduling.Actor{ID: "doctor-1", Role: scheduling.RoleDoctor}
var staffActor = scheduling.Actor{ID: "staff-1", Role: scheduling.RoleStaff}

// Tests

func TestCreateAppointment(t *testing.T) {
	f := newFixture(t)
	doctorID := uuid.New()
	start := f.clock.now.Add(48 * time.Hour).Truncate(time.Hour) // 09:00, within hours

	created, err := f.usecase.Create(context.Background(), createRequest(doctorID, start), patientActor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.Status != string(entity.StatusScheduled) {
		t.Errorf("status = %s, want SCHEDULED", created.Status)
	}
	if created.ConfirmationToken == "" {
		t.Error("expected a confirmation token")
	}
	if created.Version != 1 {
		t.Errorf("version = %d, want 1", created.Version)
	}
	if !created.EndTime.Equal(start.Add(30 * time.Minute)) {
		t.Errorf("end time = %s, want %s", created.EndTime, start.Add(30*time.Minute))
	}

	actions := f.history.actionsFor(created.ID)
	if len(actions) != 1 || actions[0] != entity.HistoryActionCreated {
		t.Errorf("history actions = %v, want [CREATED]", actions)
	}
	if kinds := f.dispatcher.dispatched(); len(kinds) != 1 || kinds[0] != service.NotificationCreated {
		t.Errorf("dispatched = %v, want [CREATED]", kinds)
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	f := newFixture(t)
	doctorID := uuid.New()

	tests := []struct {
		name    string
		mutate  func(req *dto.CreateAppointmentRequest)
		wantErr error
	}{
		{
			name:    "start in the past",
			mutate:  func(req *dto.CreateAppointmentRequest) { req.StartTime = f.clock.now.Add(-time.Hour) },
			wantErr: ErrStartNotInFuture,
		},
		{
			name:    "beyond advance window",
			mutate:  func(req *dto.CreateAppointmentRequest) { req.StartTime = f.clock.now.AddDate(0, 0, 31) },
			wantErr: ErrTooFarInAdvance,
		},
		{
			name: "outside business hours",
			mutate: func(req *dto.CreateAppointmentRequest) {
				req.StartTime = time.Date(2026, 9, 2, 19, 0, 0, 0, time.UTC)
			},
			wantErr: ErrOutsideBusinessHours,
		},
		{
			name: "spills past closing",
			mutate: func(req *dto.CreateAppointmentRequest) {
				req.StartTime = time.Date(2026, 9, 2, 17, 45, 0, 0, time.UTC)
			},
			wantErr: ErrOutsideBusinessHours,
		},
		{
			name:    "duration too short",
			mutate:  func(req *dto.CreateAppointmentRequest) { req.DurationMinutes = 10 },
			wantErr: ErrInvalidDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := createRequest(doctorID, f.clock.now.Add(48*time.Hour))
			tt.mutate(req)
			_, err := f.usecase.Create(context.Background(), req, patientActor)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateAppointmentConflict(t *testing.T) {
	f := newFixture(t)
	doctorID := uuid.New()
	start := f.clock.now.Add(48 * time.Hour)

	if _, err := f.usecase.Create(context.Background(), createRequest(doctorID, start), patientActor); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	// Overlapping window for the same doctor is rejected
	_, err := f.usecase.Create(context.Background(), createRequest(doctorID, start.Add(15*time.Minute)), patientActor)
	if !errors.Is(err, ErrSchedulingConflict) {
		t.Fatalf("overlapping Create error = %v, want ErrSchedulingConflict", err)
	}

	// Back-to-back is fine
	if _, err := f.usecase.Create(context.Background(), createRequest(doctorID, start.Add(30*time.Minute)), patientActor); err != nil {
		t.Errorf("back-to-back Create: %v", err)
	}

	// Same window, different doctor is fine
	if _, err := f.usecase.Create(context.Background(), createRequest(uuid.New(), start), patientActor); err != nil {
		t.Errorf("other doctor Create: %v", err)
	}
}

func TestCreateAppointmentConcurrent(t *testing.T) {
	f := newFixture(t)
	doctorID := uuid.New()
	start := f.clock.now.Add(48 * time.Hour)

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.usecase.Create(context.Background(), createRequest(doctorID, start), patientActor)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrSchedulingConflict) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d concurrent creates succeeded for one slot, want exactly 1", succeeded)
	}
}

func TestCancelAppointment(t *testing.T) {
	f := newFixture(t)
	start := f.clock.now.Add(48 * time.Hour)

	created, err := f.usecase.Create(context.Background(), createRequest(uuid.New(), start), patientActor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cancelled, err := f.usecase.Cancel(context.Background(), created.ID, &dto.CancelAppointmentRequest{Reason: "conflict at work"}, patientActor)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if cancelled.Status != string(entity.StatusCancelled) {
		t.Errorf("status = %s, want CANCELLED", cancelled.Status)
	}
	if cancelled.CancellationReason != "conflict at work" {
		t.Errorf("cancellation reason = %q", cancelled.CancellationReason)
	}
	if cancelled.CancelledAt == nil {
		t.Error("expected cancelled_at to be set")
	}
	if cancelled.Version != 2 {
		t.Errorf("version = %d, want 2", cancelled.Version)
	}

	actions := f.history.actionsFor(created.ID)
	want := []string{entity.HistoryActionCreated, entity.HistoryActionCancelled}
	if len(actions) != len(want) || actions[1] != want[1] {
		t.Errorf("history actions = %v, want %v", actions, want)
	}
}

func TestCancelAppointmentInsideCutoff(t *testing.T) {
	f := newFixture(t)
	start := f.clock.now.Add(48 * time.Hour)

	created, err := f.usecase.Create(context.Background(), createRequest(uuid.New(), start), patientActor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Advance the clock to 2 hours before start, inside the 24h cutoff
	f.clock.now = start.Add(-2 * time.Hour)

	_, err = f.usecase.Cancel(context.Background(), created.ID, &dto.CancelAppointmentRequest{Reason: "late"}, patientActor)
	var transitionErr *scheduling.InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("Cancel inside cutoff error = %v, want InvalidTransitionError", err)
	}

	// Appointment is unchanged
	got, err := f.usecase.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != string(entity.StatusScheduled) {
		t.Errorf("status after failed cancel = %s, want SCHEDULED", got.Status)
	}
}

func TestConfirmAppointment(t *testing.T) {
	f := newFixture(t)
	start := f.clock.now.Add(48 * time.Hour)

	created, err := f.usecase.Create(context.Background(), createRequest(uuid.New(), start), patientActor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	confirmed, err := f.usecase.Confirm(context.Background(), created.ConfirmationToken)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if confirmed.Status != string(entity.StatusConfirmed) {
		t.Errorf("status = %s, want CONFIRMED", confirmed.Status)
	}
	if confirmed.ConfirmationToken != "" {
		t.Error("token must be cleared after confirmation")
	}

	// Token is single-use
	if _, err := f.usecase.Confirm(context.Background(), created.ConfirmationToken); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("second Confirm error = %v, want ErrAppointmentNotFound", err)
	}

	if _, err := f.usecase.Confirm(context.Background(), "no-such-token"); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("unknown token error = %v, want ErrAppointmentNotFound", err)
	}
}

func TestRescheduleAppointment(t *testing.T) {
	f := newFixture(t)
	doctorID := uuid.New()
	start := f.clock.now.Add(48 * time.Hour)

	created, err := f.usecase.Create(context.Background(), createRequest(doctorID, start), patientActor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.usecase.Confirm(context.Background(), created.ConfirmationToken); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	newStart := start.Add(3 * time.Hour)
	rescheduled, err := f.usecase.Reschedule(context.Background(), created.ID, &dto.RescheduleAppointmentRequest{NewStartTime: newStart}, patientActor)
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}

	if !rescheduled.StartTime.Equal(newStart) {
		t.Errorf("start = %s, want %s", rescheduled.StartTime, newStart)
	}
	// A confirmed appointment returns to SCHEDULED with a fresh token
	if rescheduled.Status != string(entity.StatusScheduled) {
		t.Errorf("status = %s, want SCHEDULED", rescheduled.Status)
	}
	if rescheduled.ConfirmationToken == "" {
		t.Error("expected a fresh confirmation token after reschedule")
	}
	if rescheduled.ConfirmationToken == created.ConfirmationToken {
		t.Error("reschedule must issue a new token")
	}
	if rescheduled.ReminderSent {
		t.Error("reminder flag must be reset on reschedule")
	}

	actions := f.history.actionsFor(created.ID)
	if actions[len(actions)-1] != entity.HistoryActionRescheduled {
		t.Errorf("last history action = %s, want RESCHEDULED", actions[len(actions)-1])
	}
}

func TestRescheduleConflict(t *testing.T) {
	f := newFixture(t)
	doctorID := uuid.New()
	start := f.clock.now.Add(48 * time.Hour)

	first, err := f.usecase.Create(context.Background(), createRequest(doctorID, start), patientActor)
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	second, err := f.usecase.Create(context.Background(), createRequest(doctorID, start.Add(time.Hour)), patientActor)
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	// Moving the second onto the first is rejected
	_, err = f.usecase.Reschedule(context.Background(), second.ID, &dto.RescheduleAppointmentRequest{NewStartTime: start}, patientActor)
	if !errors.Is(err, ErrSchedulingConflict) {
		t.Errorf("Reschedule onto occupied slot error = %v, want ErrSchedulingConflict", err)
	}

	// Rescheduling within its own window is allowed: the appointment does not
	// conflict with itself
	if _, err := f.usecase.Reschedule(context.Background(), first.ID, &dto.RescheduleAppointmentRequest{NewStartTime: start.Add(15 * time.Minute)}, patientActor); err != nil {
		t.Errorf("Reschedule within own window: %v", err)
	}
}

func TestLifecycleFlow(t *testing.T) {
	f := newFixture(t)
	start := f.clock.now.Add(48 * time.Hour)

	created, err := f.usecase.Create(context.Background(), createRequest(uuid.New(), start), patientActor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.usecase.Confirm(context.Background(), created.ConfirmationToken); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	started, err := f.usecase.Start(context.Background(), created.ID, doctorActor)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if started.Status != string(entity.StatusInProgress) {
		t.Errorf("status = %s, want IN_PROGRESS", started.Status)
	}

	completed, err := f.usecase.Complete(context.Background(), created.ID, &dto.CompleteAppointmentRequest{DoctorNotes: "patient recovering well"}, doctorActor)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if completed.Status != string(entity.StatusCompleted) {
		t.Errorf("status = %s, want COMPLETED", completed.Status)
	}
	if completed.DoctorNotes != "patient recovering well" {
		t.Errorf("doctor notes = %q", completed.DoctorNotes)
	}

	// Terminal: nothing moves a completed appointment
	if _, err := f.usecase.Start(context.Background(), created.ID, doctorActor); err == nil {
		t.Error("Start on completed appointment must fail")
	}

	actions := f.history.actionsFor(created.ID)
	want := []string{
		entity.HistoryActionCreated,
		entity.HistoryActionConfirmed,
		entity.HistoryActionStarted,
		entity.HistoryActionCompleted,
	}
	if len(actions) != len(want) {
		t.Fatalf("history actions = %v, want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("history[%d] = %s, want %s", i, actions[i], want[i])
		}
	}
}

func TestTransitionRoleChecks(t *testing.T) {
	f := newFixture(t)
	start := f.clock.now.Add(48 * time.Hour)

	created, err := f.usecase.Create(context.Background(), createRequest(uuid.New(), start), patientActor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.usecase.Confirm(context.Background(), created.ConfirmationToken); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if _, err := f.usecase.Start(context.Background(), created.ID, patientActor); !errors.Is(err, scheduling.ErrActorNotAllowed) {
		t.Errorf("patient Start error = %v, want ErrActorNotAllowed", err)
	}
	if _, err := f.usecase.MarkNoShow(context.Background(), created.ID, doctorActor); !errors.Is(err, scheduling.ErrActorNotAllowed) {
		t.Errorf("doctor MarkNoShow error = %v, want ErrActorNotAllowed", err)
	}
	if _, err := f.usecase.MarkNoShow(context.Background(), created.ID, staffActor); err != nil {
		t.Errorf("staff MarkNoShow: %v", err)
	}
}

func TestMarkNoShowFromScheduled(t *testing.T) {
	f := newFixture(t)
	start := f.clock.now.Add(48 * time.Hour)

	created, err := f.usecase.Create(context.Background(), createRequest(uuid.New(), start), patientActor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	noShow, err := f.usecase.MarkNoShow(context.Background(), created.ID, staffActor)
	if err != nil {
		t.Fatalf("MarkNoShow: %v", err)
	}
	if noShow.Status != string(entity.StatusNoShow) {
		t.Errorf("status = %s, want NO_SHOW", noShow.Status)
	}

	// The slot is released: a new booking on the same window succeeds
	if _, err := f.usecase.Create(context.Background(), createRequest(noShow.DoctorID, start), patientActor); err != nil {
		t.Errorf("rebooking a no-show slot: %v", err)
	}
}

func TestUpdateAppointment(t *testing.T) {
	f := newFixture(t)
	doctorID := uuid.New()
	start := f.clock.now.Add(48 * time.Hour)

	created, err := f.usecase.Create(context.Background(), createRequest(doctorID, start), patientActor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	reason := "updated reason"
	updated, err := f.usecase.Update(context.Background(), created.ID, &dto.UpdateAppointmentRequest{Reason: &reason}, patientActor)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Reason != reason {
		t.Errorf("reason = %q, want %q", updated.Reason, reason)
	}
	if updated.Version != created.Version+1 {
		t.Errorf("version = %d, want %d", updated.Version, created.Version+1)
	}

	// Moving the window onto an occupied slot fails
	if _, err := f.usecase.Create(context.Background(), createRequest(doctorID, start.Add(time.Hour)), patientActor); err != nil {
		t.Fatalf("Create blocker: %v", err)
	}
	newStart := start.Add(time.Hour)
	_, err = f.usecase.Update(context.Background(), created.ID, &dto.UpdateAppointmentRequest{StartTime: &newStart}, patientActor)
	if !errors.Is(err, ErrSchedulingConflict) {
		t.Errorf("Update onto occupied slot error = %v, want ErrSchedulingConflict", err)
	}
}

func TestVersionConflictOnStaleSave(t *testing.T) {
	f := newFixture(t)
	start := f.clock.now.Add(48 * time.Hour)

	created, err := f.usecase.Create(context.Background(), createRequest(uuid.New(), start), patientActor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stale, err := f.repo.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}

	// Another writer bumps the version
	reason := "first writer"
	if _, err := f.usecase.Update(context.Background(), created.ID, &dto.UpdateAppointmentRequest{Reason: &reason}, patientActor); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := f.repo.Save(context.Background(), stale); !errors.Is(err, repository.ErrVersionConflict) {
		t.Errorf("stale Save error = %v, want ErrVersionConflict", err)
	}
}

func TestAvailableSlots(t *testing.T) {
	f := newFixture(t)
	doctorID := uuid.New()
	date := time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)

	if _, err := f.usecase.Create(context.Background(), createRequest(doctorID, date.Add(10*time.Hour)), patientActor); err != nil {
		t.Fatalf("Create: %v", err)
	}

	slots, err := f.usecase.AvailableSlots(context.Background(), doctorID, date, 30)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}

	if slots.Total != 19 {
		t.Errorf("total slots = %d, want 19 (20 minus the booked one)", slots.Total)
	}
	for _, slot := range slots.Slots {
		if slot.Equal(date.Add(10 * time.Hour)) {
			t.Errorf("booked slot %s listed as available", slot)
		}
	}
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t)
	doctorID := uuid.New()
	start := f.clock.now.Add(48 * time.Hour)

	if _, err := f.usecase.Create(context.Background(), createRequest(doctorID, start), patientActor); err != nil {
		t.Fatalf("Create: %v", err)
	}

	busy, err := f.usecase.CheckAvailability(context.Background(), doctorID, start, start.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if busy.Available {
		t.Error("occupied window reported as available")
	}

	free, err := f.usecase.CheckAvailability(context.Background(), doctorID, start.Add(30*time.Minute), start.Add(time.Hour))
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !free.Available {
		t.Error("adjacent window reported as unavailable")
	}
}

func TestGetNotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.usecase.Get(context.Background(), uuid.New()); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("Get unknown id error = %v, want ErrAppointmentNotFound", err)
	}
}
