package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/mirage/internal/idgen"
	"github.com/alfredjeanlab/mirage/internal/model"
)

// Emitter stamps envelopes and publishes events on a best-effort basis:
// failures are logged and never returned.
type Emitter struct {
	pub    Publisher
	logger *slog.Logger
	now    func() time.Time
}

// NewEmitter wraps pub. A nil pub publishes nothing.
func NewEmitter(pub Publisher, logger *slog.Logger) *Emitter {
	if pub == nil {
		pub = &NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{pub: pub, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Envelope returns a fresh envelope for device.
func (e *Emitter) Envelope(device model.DeviceID) Envelope {
	id, err := idgen.Generate()
	if err != nil {
		e.logger.Warn("event id generation failed", "err", err)
	}
	return Envelope{ID: id, DeviceID: device, At: e.now()}
}

// Emit publishes event on topic.
func (e *Emitter) Emit(ctx context.Context, topic string, event any) {
	if err := e.pub.Publish(ctx, topic, event); err != nil {
		e.logger.Warn("publish event failed", "topic", topic, "err", err)
	}
}

// Close closes the underlying publisher.
func (e *Emitter) Close() error {
	return e.pub.Close()
}
