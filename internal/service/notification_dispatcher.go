package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"medical-appointment-service/internal/client"
	"medical-appointment-service/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NotificationKind identifies the event a notification announces.
type NotificationKind string

const (
	NotificationCreated     NotificationKind = "CREATED"
	NotificationUpdated     NotificationKind = "UPDATED"
	NotificationCancelled   NotificationKind = "CANCELLED"
	NotificationRescheduled NotificationKind = "RESCHEDULED"
	NotificationReminder    NotificationKind = "REMINDER"
	NotificationConfirmed   NotificationKind = "CONFIRMED"
)

// Notification carries everything a delivery channel needs. Patient and
// Doctor are best-effort enrichments and may be nil.
type Notification struct {
	Kind        NotificationKind    `json:"kind"`
	Appointment *entity.Appointment `json:"appointment"`
	Patient     *client.UserInfo    `json:"patient,omitempty"`
	Doctor      *client.UserInfo    `json:"doctor,omitempty"`
	EmittedAt   time.Time           `json:"emitted_at"`
}

// Notifier submits one notification to a delivery channel. Delivery mechanics
// (email, SMS, push) live outside this service.
type Notifier interface {
	Send(ctx context.Context, notification Notification) error
}

// RedisNotifier publishes notifications as JSON to a Redis channel consumed
// by the external delivery workers.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(redisClient *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{client: redisClient, channel: channel}
}

func (n *RedisNotifier) Send(ctx context.Context, notification Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

var notificationFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "appointment_notification_failures_total",
		Help: "Total number of notification submissions that failed.",
	},
	[]string{"kind"},
)

func init() {
	prometheus.MustRegister(notificationFailures)
}

// Dispatcher decouples scheduling operations from notification delivery:
// operations submit to a buffered channel and a background worker resolves
// participants and calls the Notifier. A failed or dropped notification is
// logged and counted, never propagated to the triggering operation.
type Dispatcher struct {
	notifier      Notifier
	userDirectory client.UserDirectory
	log           *logrus.Logger

	jobs     chan Notification
	wg       sync.WaitGroup
	stopped  atomic.Bool
	stopOnce sync.Once
}

func NewDispatcher(notifier Notifier, userDirectory client.UserDirectory, queueSize int, log *logrus.Logger) *Dispatcher {
	d := &Dispatcher{
		notifier:      notifier,
		userDirectory: userDirectory,
		log:           log,
		jobs:          make(chan Notification, queueSize),
	}

	d.wg.Add(1)
	go d.worker()

	return d
}

// Dispatch enqueues a notification. Never blocks: when the queue is full the
// notification is dropped and counted.
func (d *Dispatcher) Dispatch(kind NotificationKind, appointment *entity.Appointment) {
	if d.stopped.Load() {
		return
	}

	copied := *appointment
	select {
	case d.jobs <- Notification{Kind: kind, Appointment: &copied, EmittedAt: time.Now()}:
	default:
		notificationFailures.WithLabelValues(string(kind)).Inc()
		d.log.Warnf("Notification queue full, dropping %s for appointment %s", kind, appointment.ID)
	}
}

// Stop drains the queue and waits for the worker to finish.
// Safe to call multiple times.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.stopped.Store(true)
		close(d.jobs)
		d.wg.Wait()
		d.log.Info("Notification dispatcher stopped")
	})
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for job := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		d.deliver(ctx, job)
		cancel()
	}
}

func (d *Dispatcher) deliver(ctx context.Context, job Notification) {
	// Participant lookups are best-effort enrichment
	if patient, err := d.userDirectory.GetUser(ctx, job.Appointment.PatientID); err == nil {
		job.Patient = patient
	} else {
		d.log.Warnf("Failed to resolve patient %s for notification: %+v", job.Appointment.PatientID, err)
	}
	if doctor, err := d.userDirectory.GetUser(ctx, job.Appointment.DoctorID); err == nil {
		job.Doctor = doctor
	} else {
		d.log.Warnf("Failed to resolve doctor %s for notification: %+v", job.Appointment.DoctorID, err)
	}

	if err := d.notifier.Send(ctx, job); err != nil {
		notificationFailures.WithLabelValues(string(job.Kind)).Inc()
		d.log.Errorf("Failed to send %s notification for appointment %s: %+v", job.Kind, job.Appointment.ID, err)
		return
	}

	d.log.Debugf("Notification %s sent for appointment %s", job.Kind, job.Appointment.ID)
}
