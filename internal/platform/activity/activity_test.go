package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type memSink struct {
	entries []*Entry
	fail    bool
}

func (s *memSink) Append(ctx context.Context, actor, action, detail string) error {
	if s.fail {
		return errors.New("sink unavailable")
	}
	s.entries = append(s.entries, &Entry{
		ID: int64(len(s.entries) + 1), Actor: actor, Action: action, Detail: detail,
		CreatedAt: time.Now(),
	})
	return nil
}

func (s *memSink) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	return s.entries, len(s.entries), nil
}

func TestRecord_Appends(t *testing.T) {
	sink := &memSink{}
	rec := NewRecorder(sink, zerolog.Nop())

	rec.Record(context.Background(), "admin", "patient_created", "Amina K")

	if len(sink.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(sink.entries))
	}
	e := sink.entries[0]
	if e.Actor != "admin" || e.Action != "patient_created" || e.Detail != "Amina K" {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestRecord_SuppressesSinkFailure(t *testing.T) {
	rec := NewRecorder(&memSink{fail: true}, zerolog.Nop())

	// Must not panic or propagate; the triggering request already succeeded.
	rec.Record(context.Background(), "admin", "patient_created", "")
}
