package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"medical-appointment-service/internal/domain/entity"
	domainRepo "medical-appointment-service/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const appointmentCacheKeyPrefix = "appointment:id:"

// cachedAppointmentRepository is an explicit read cache wrapping appointment
// reads by id. Every write path invalidates the cached entry; cache failures
// fall back to the store and are only logged. Reads inside a transaction
// bypass the cache so read-modify-write cycles always see committed store
// state, protected by the version CAS.
type cachedAppointmentRepository struct {
	domainRepo.AppointmentRepository

	redisClient *redis.Client
	ttl         time.Duration
	log         *logrus.Logger
}

func NewCachedAppointmentRepository(inner domainRepo.AppointmentRepository, redisClient *redis.Client, ttl time.Duration, log *logrus.Logger) domainRepo.AppointmentRepository {
	return &cachedAppointmentRepository{
		AppointmentRepository: inner,
		redisClient:           redisClient,
		ttl:                   ttl,
		log:                   log,
	}
}

func appointmentCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("%s%s", appointmentCacheKeyPrefix, id)
}

func inTransaction(ctx context.Context) bool {
	return ctx.Value(txKey{}) != nil
}

func (r *cachedAppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	if inTransaction(ctx) {
		return r.AppointmentRepository.FindByID(ctx, id)
	}

	key := appointmentCacheKey(id)
	if raw, err := r.redisClient.Get(ctx, key).Bytes(); err == nil {
		var cached entity.Appointment
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		r.log.Warnf("Discarding undecodable cache entry %s", key)
		r.redisClient.Del(ctx, key)
	} else if err != redis.Nil {
		r.log.Warnf("Cache read failed for %s, falling back to store: %+v", key, err)
	}

	appointment, err := r.AppointmentRepository.FindByID(ctx, id)
	if err != nil || appointment == nil {
		return appointment, err
	}

	if raw, err := json.Marshal(appointment); err == nil {
		if err := r.redisClient.Set(ctx, key, raw, r.ttl).Err(); err != nil {
			r.log.Warnf("Cache write failed for %s: %+v", key, err)
		}
	}
	return appointment, nil
}

func (r *cachedAppointmentRepository) invalidate(ctx context.Context, id uuid.UUID) {
	if err := r.redisClient.Del(ctx, appointmentCacheKey(id)).Err(); err != nil {
		r.log.Warnf("Cache invalidation failed for appointment %s: %+v", id, err)
	}
}

func (r *cachedAppointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	if err := r.AppointmentRepository.Create(ctx, appointment); err != nil {
		return err
	}
	r.invalidate(ctx, appointment.ID)
	return nil
}

func (r *cachedAppointmentRepository) Save(ctx context.Context, appointment *entity.Appointment) error {
	if err := r.AppointmentRepository.Save(ctx, appointment); err != nil {
		return err
	}
	r.invalidate(ctx, appointment.ID)
	return nil
}
