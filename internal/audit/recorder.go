package audit

import (
	"context"
	"log/slog"
	"time"
)

// Mirror receives a copy of every appended entry, fire-and-forget. The
// store remains the system of record; a mirror failure never fails the
// append.
type Mirror interface {
	Publish(ctx context.Context, entry Entry)
}

// Recorder captures audit entries. It is append-only and uses the storage
// layer for persistence so tests can swap sinks easily.
type Recorder struct {
	store    Store
	mirror   Mirror
	onAppend []func(context.Context)
	logger   *slog.Logger
}

// Option configures optional recorder collaborators.
type Option func(*Recorder)

// WithMirror attaches a downstream copy sink (e.g. a Kafka topic).
func WithMirror(m Mirror) Option {
	return func(r *Recorder) { r.mirror = m }
}

// WithOnAppend registers a hook run after each successful append, used for
// cache invalidation.
func WithOnAppend(fn func(context.Context)) Option {
	return func(r *Recorder) { r.onAppend = append(r.onAppend, fn) }
}

func NewRecorder(store Store, logger *slog.Logger, opts ...Option) *Recorder {
	r := &Recorder{store: store, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends one entry. The append is durable before Record returns;
// mirrors and hooks run afterwards and cannot undo it.
func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if err := r.store.Append(ctx, entry); err != nil {
		return err
	}
	if r.mirror != nil {
		r.mirror.Publish(ctx, entry)
	}
	for _, fn := range r.onAppend {
		fn(ctx)
	}
	r.logger.DebugContext(ctx, "audit entry appended",
		"document_number", entry.DocumentNumber,
		"risk_level", entry.RiskLevel,
	)
	return nil
}

// List returns all entries, newest first.
func (r *Recorder) List(ctx context.Context) ([]Entry, error) {
	return r.store.List(ctx)
}
