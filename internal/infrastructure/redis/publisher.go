package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/jhoicas/Clinica-api/internal/application/ports"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

var _ ports.Notifier = (*AlertPublisher)(nil)

// AlertMessage carga publicada en el canal de alertas.
type AlertMessage struct {
	ID            string            `json:"id"`
	Action        string            `json:"action"`
	TargetID      string            `json:"target_id"`
	ActorID       string            `json:"actor_id"`
	ActorRole     string            `json:"actor_role"`
	Series        string            `json:"series,omitempty"`
	PeriodKey     string            `json:"period_key,omitempty"`
	Justification string            `json:"justification,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// NewAlertMessage arma el mensaje a partir del evento.
func NewAlertMessage(e *entity.AuditEvent) AlertMessage {
	return AlertMessage{
		ID:            e.ID,
		Action:        e.Action,
		TargetID:      e.TargetID,
		ActorID:       e.ActorID,
		ActorRole:     e.ActorRole,
		Series:        e.Series,
		PeriodKey:     e.PeriodKey,
		Justification: e.Justification,
		Details:       e.Details,
		CreatedAt:     e.CreatedAt,
	}
}

// Publisher lo mínimo del cliente de Redis que usa el publicador (*goredis.Client lo cumple).
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd
}

// Tras breakerFailures fallos seguidos se deja de intentar durante breakerTimeout.
const (
	breakerFailures = 5
	breakerTimeout  = 30 * time.Second
)

// AlertPublisher publica cada alerta confirmada en un canal de Redis (ej. clinica:alertas)
// para que otros servicios (panel, mensajería al administrador) la consuman.
// Un circuit breaker evita esperar a un Redis caído en cada cierre.
type AlertPublisher struct {
	client  Publisher
	channel string
	cb      *gobreaker.CircuitBreaker
}

// NewAlertPublisher construye el publicador.
func NewAlertPublisher(client Publisher, channel string, log zerolog.Logger) *AlertPublisher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-alertas",
		MaxRequests: 1,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cambio de estado del circuit breaker")
		},
	})
	return &AlertPublisher{client: client, channel: channel, cb: cb}
}

// Notify publica el evento serializado en JSON.
func (p *AlertPublisher) Notify(ctx context.Context, e *entity.AuditEvent) error {
	payload, err := json.Marshal(NewAlertMessage(e))
	if err != nil {
		return fmt.Errorf("alerta: serializar: %w", err)
	}
	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.client.Publish(ctx, p.channel, payload).Err()
	})
	if err != nil {
		return fmt.Errorf("alerta: publicar en %s: %w", p.channel, err)
	}
	return nil
}
