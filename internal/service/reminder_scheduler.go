package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"medical-appointment-service/internal/domain/entity"
	"medical-appointment-service/internal/domain/repository"
	"medical-appointment-service/internal/scheduling"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	remindersSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "appointment_reminders_sent_total",
		Help: "Total number of appointment reminders dispatched successfully.",
	})
	remindersFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "appointment_reminders_failed_total",
		Help: "Total number of appointment reminder dispatch attempts that failed.",
	})
)

func init() {
	prometheus.MustRegister(remindersSent, remindersFailed)
}

// ReminderScheduler periodically scans for appointments entering the reminder
// window and dispatches a reminder at most once per appointment. A failed
// dispatch leaves the reminder flag unset so the appointment stays eligible
// for the next tick; one failure never aborts the rest of the batch.
type ReminderScheduler struct {
	appointmentRepo repository.AppointmentRepository
	historyRepo     repository.AppointmentHistoryRepository
	tx              repository.Transactor
	notifier        Notifier
	clock           scheduling.Clock
	log             *logrus.Logger

	window   time.Duration
	interval time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

func NewReminderScheduler(
	appointmentRepo repository.AppointmentRepository,
	historyRepo repository.AppointmentHistoryRepository,
	tx repository.Transactor,
	notifier Notifier,
	clock scheduling.Clock,
	window time.Duration,
	interval time.Duration,
	log *logrus.Logger,
) *ReminderScheduler {
	return &ReminderScheduler{
		appointmentRepo: appointmentRepo,
		historyRepo:     historyRepo,
		tx:              tx,
		notifier:        notifier,
		clock:           clock,
		log:             log,
		window:          window,
		interval:        interval,
		stopChan:        make(chan struct{}),
	}
}

// Start launches the periodic scan loop. Call Stop during graceful shutdown.
func (s *ReminderScheduler) Start() {
	s.wg.Add(1)
	go s.loop()
	s.log.Infof("Reminder scheduler started: window=%v interval=%v", s.window, s.interval)
}

// Stop terminates the loop and waits for an in-flight tick to finish.
// Safe to call multiple times.
func (s *ReminderScheduler) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("Reminder scheduler stopped")
	}
}

func (s *ReminderScheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.interval)
			if _, err := s.RunOnce(ctx); err != nil {
				s.log.Errorf("Reminder scan failed: %+v", err)
			}
			cancel()
		}
	}
}

// RunOnce performs a single reminder scan and returns how many reminders
// were sent.
func (s *ReminderScheduler) RunOnce(ctx context.Context) (int, error) {
	now := s.clock.Now()

	due, err := s.appointmentRepo.FindDueForReminder(ctx, now, now.Add(s.window))
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	sent := 0
	for i := range due {
		if err := s.remind(ctx, &due[i]); err != nil {
			remindersFailed.Inc()
			s.log.Errorf("Failed to send reminder for appointment %s: %+v", due[i].ID, err)
			continue
		}
		remindersSent.Inc()
		sent++
	}

	s.log.Infof("Reminder scan complete: %d due, %d sent", len(due), sent)
	return sent, nil
}

func (s *ReminderScheduler) remind(ctx context.Context, appointment *entity.Appointment) error {
	err := s.notifier.Send(ctx, Notification{
		Kind:        NotificationReminder,
		Appointment: appointment,
		EmittedAt:   s.clock.Now(),
	})
	if err != nil {
		return err
	}

	appointment.ReminderSent = true
	appointment.UpdatedBy = "REMINDER_SCHEDULER"

	err = s.tx.InTransaction(ctx, func(txCtx context.Context) error {
		if err := s.appointmentRepo.Save(txCtx, appointment); err != nil {
			return err
		}
		return s.historyRepo.Append(txCtx, &entity.AppointmentHistory{
			AppointmentID: appointment.ID,
			Action:        entity.HistoryActionReminder,
			Description:   "Reminder dispatched",
			PerformedBy:   "REMINDER_SCHEDULER",
			PerformedAt:   s.clock.Now(),
		})
	})
	if errors.Is(err, repository.ErrVersionConflict) {
		// The appointment changed under us (cancelled or rescheduled); the
		// next tick re-evaluates its eligibility.
		s.log.Warnf("Skipping reminder flag for appointment %s: concurrent modification", appointment.ID)
		return nil
	}
	return err
}
