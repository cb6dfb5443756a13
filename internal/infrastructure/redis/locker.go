package redis

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Clinica-api/internal/application/ports"
	"github.com/jhoicas/Clinica-api/internal/domain"
)

var _ ports.PeriodLocker = (*PeriodLocker)(nil)

// PeriodLocker serializa cierre, reapertura y eliminación de un mismo periodo entre instancias.
type PeriodLocker struct {
	client *redislock.Client
	ttl    time.Duration
	retry  redislock.RetryStrategy
	log    zerolog.Logger
}

// NewPeriodLocker construye el candado sobre un cliente redislock.
func NewPeriodLocker(client redislock.RedisClient, ttl time.Duration, log zerolog.Logger) *PeriodLocker {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &PeriodLocker{
		client: redislock.New(client),
		ttl:    ttl,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 30),
		log:    log,
	}
}

// Acquire espera el candado unos segundos. Si otra instancia lo retiene, devuelve ErrConflict;
// si Redis falla, ErrStoreUnavailable.
func (l *PeriodLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lock, err := l.client.Obtain(ctx, "lock:"+key, l.ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.Invalid(domain.ErrConflict, "period_key", "otra operación sobre el periodo está en curso")
	}
	if err != nil {
		return nil, domain.Invalid(domain.ErrStoreUnavailable, "", "candado %s: %v", key, err)
	}
	return func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el candado")
		}
	}, nil
}
