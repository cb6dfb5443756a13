package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrConflict              = errors.New("conflicto con el estado actual")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrInvalidAmount         = errors.New("monto inconsistente con el tipo de movimiento")
	ErrUnknownKey            = errors.New("clave de libro desconocida")
	ErrAlreadyClosed         = errors.New("el periodo ya tiene un cierre activo")
	ErrJustificationRequired = errors.New("justificación requerida")
	ErrPeriodClosed          = errors.New("el periodo está cerrado")
	ErrStoreUnavailable      = errors.New("almacenamiento no disponible")
)

// ValidationError lleva el motivo legible de un fallo (campo + mensaje) y se desenvuelve a su error base,
// de modo que errors.Is(err, ErrJustificationRequired) sigue funcionando.
type ValidationError struct {
	Kind    error
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%v: %s: %s", e.Kind, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// Invalid construye un ValidationError.
func Invalid(kind error, field, format string, args ...any) error {
	return &ValidationError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Reason devuelve el mensaje legible de err: el del ValidationError si existe, si no err.Error().
func Reason(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}

// IsRetryable indica si el llamador podría reintentar con backoff. Solo ErrStoreUnavailable lo es.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
