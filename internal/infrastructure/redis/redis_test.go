package redis_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/infrastructure/redis"
)

func TestNewAlertMessage_JSON(t *testing.T) {
	at := time.Date(2026, 1, 29, 19, 30, 0, 0, time.UTC)
	msg := redis.NewAlertMessage(&entity.AuditEvent{
		ID:        "e-1",
		Action:    entity.AlertVariance,
		TargetID:  "c-1",
		ActorID:   "u-1",
		ActorRole: entity.RoleSecretaria,
		Series:    entity.SeriesMedias,
		PeriodKey: "2026-01-29",
		Details:   map[string]string{"variance": "-1000"},
		CreatedAt: at,
	})

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "variance", got["action"])
	assert.Equal(t, "medias", got["series"])
	assert.Equal(t, "2026-01-29T19:30:00Z", got["created_at"])
	assert.NotContains(t, got, "justification")
	assert.Equal(t, map[string]any{"variance": "-1000"}, got["details"])
}

type failingPublisher struct {
	calls int
	err   error
}

func (f *failingPublisher) Publish(ctx context.Context, _ string, _ interface{}) *goredis.IntCmd {
	f.calls++
	cmd := goredis.NewIntCmd(ctx)
	cmd.SetErr(f.err)
	return cmd
}

func TestAlertPublisher_CircuitBreaker(t *testing.T) {
	fake := &failingPublisher{err: errors.New("connection refused")}
	pub := redis.NewAlertPublisher(fake, "clinica:alertas", zerolog.Nop())
	event := &entity.AuditEvent{ID: "e-1", Action: entity.AuditClose, TargetID: "c-1"}

	for i := 0; i < 5; i++ {
		err := pub.Notify(context.Background(), event)
		require.Error(t, err)
		assert.ErrorIs(t, err, fake.err)
	}

	err := pub.Notify(context.Background(), event)
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, fake.calls, "con el circuito abierto no se llama a Redis")
}

func TestAlertPublisher_PublicaJSON(t *testing.T) {
	fake := &failingPublisher{}
	pub := redis.NewAlertPublisher(fake, "clinica:alertas", zerolog.Nop())

	require.NoError(t, pub.Notify(context.Background(), &entity.AuditEvent{ID: "e-2", Action: entity.AuditReopen}))
	assert.Equal(t, 1, fake.calls)
}

func TestPeriodLocker_RedisCaido(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	locker := redis.NewPeriodLocker(client, time.Second, zerolog.Nop())
	release, err := locker.Acquire(context.Background(), "clinica:2026-01-29")
	assert.Nil(t, release)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
