package telemetry

import (
	"context"
	"log/slog"
	"time"

	"todo-api/internal/telemetry/domain"
)

// emitTimeout is the max time allowed for a single async emit. Used by EmitAsync and by ShutdownDrainDuration.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long to wait after the HTTP server stops before shutting down
// OTel providers and the Kafka producer, so in-flight async emits have time to complete.
const ShutdownDrainDuration = emitTimeout

// DrainDuration is how long shutdown should wait for emits sent to emitter.
// A nil emitter never has emits in flight, so it needs no wait.
func DrainDuration(emitter EventEmitter) time.Duration {
	if emitter == nil {
		return 0
	}
	return ShutdownDrainDuration
}

// EmitAsync runs Emit in a goroutine with a short timeout so the caller is not blocked.
// emitter and event may be nil; EmitAsync then returns without starting a goroutine.
// The goroutine uses context.Background() so request cancellation does not abort the emit.
func EmitAsync(emitter EventEmitter, ctx context.Context, event *domain.Event) {
	if emitter == nil || event == nil {
		return
	}
	go func() {
		emitCtx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := emitter.Emit(emitCtx, event); err != nil {
			slog.Default().Warn("telemetry: async emit failed",
				slog.String("event_type", event.EventType), slog.Any("error", err))
		}
	}()
}
