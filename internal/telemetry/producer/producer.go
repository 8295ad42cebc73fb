// Package producer publishes telemetry events to a message broker.
package producer

import (
	"context"

	"todo-api/internal/telemetry/domain"
)

// Producer emits telemetry events. It satisfies telemetry.EventEmitter and adds Close.
type Producer interface {
	Emit(ctx context.Context, event *domain.Event) error
	Close() error
}
