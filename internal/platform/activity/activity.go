// Package activity appends an immutable audit entry for every mutating
// action. Writes are best-effort: a failed audit append is logged and
// suppressed so it can never fail the request it describes.
package activity

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Entry is one immutable audit record. The application never updates or
// deletes rows in the activity log.
type Entry struct {
	ID        int64     `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Sink persists audit entries and serves the activity-log read model.
type Sink interface {
	Append(ctx context.Context, actor, action, detail string) error
	List(ctx context.Context, limit, offset int) ([]*Entry, int, error)
}

// Recorder is the best-effort front of a Sink. Availability wins over
// perfect auditability here: the primary operation has already been
// acknowledged by the store when Record runs, and is never rolled back.
type Recorder struct {
	sink   Sink
	logger zerolog.Logger
}

func NewRecorder(sink Sink, logger zerolog.Logger) *Recorder {
	return &Recorder{sink: sink, logger: logger}
}

// Record appends an audit entry, logging and swallowing any failure.
func (r *Recorder) Record(ctx context.Context, actor, action, detail string) {
	if err := r.sink.Append(ctx, actor, action, detail); err != nil {
		r.logger.Error().Err(err).
			Str("actor", actor).
			Str("action", action).
			Msg("audit append failed")
	}
}

// List returns audit entries newest first.
func (r *Recorder) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	return r.sink.List(ctx, limit, offset)
}
