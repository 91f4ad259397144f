package activity

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorderFunc func(ctx context.Context, e Entry, max int) error

func (f recorderFunc) Record(ctx context.Context, e Entry, max int) error { return f(ctx, e, max) }

func fixedClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

func TestLog_AppendOrderAndIdentity(t *testing.T) {
	ctx := context.Background()
	log := NewLog(0, WithClock(fixedClock(time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))))

	a := log.Info(ctx, "starting")
	b := log.Success(ctx, "done")
	c := log.Error(ctx, "boom")

	entries := log.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"starting", "done", "boom"}, messages(entries))
	assert.Equal(t, []Severity{SeverityInfo, SeveritySuccess, SeverityError},
		[]Severity{entries[0].Severity, entries[1].Severity, entries[2].Severity})

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, b.ID, c.ID)
	assert.True(t, a.CreatedAt.Before(b.CreatedAt))
}

func TestLog_IDsAreUnique(t *testing.T) {
	log := NewLog(0)
	seen := make(map[string]bool)
	for range 500 {
		e := log.Info(context.Background(), "x")
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestLog_UnboundedByDefault(t *testing.T) {
	log := NewLog(0)
	for range 1000 {
		log.Info(context.Background(), "x")
	}
	assert.Equal(t, 1000, log.Len())
}

func TestLog_EvictsOldest(t *testing.T) {
	log := NewLog(3)
	for _, m := range []string{"1", "2", "3", "4", "5"} {
		log.Info(context.Background(), m)
	}

	assert.Equal(t, []string{"3", "4", "5"}, messages(log.Entries()))
}

func TestLog_HistoryIsTrimmed(t *testing.T) {
	history := []Entry{{ID: "a", Message: "old"}, {ID: "b", Message: "older"}, {ID: "c", Message: "newest"}}
	log := NewLog(2, WithHistory(history))

	assert.Equal(t, []string{"older", "newest"}, messages(log.Entries()))
}

func TestLog_RecorderFailureDoesNotFailAppend(t *testing.T) {
	var buf bytes.Buffer
	var recorded []Entry

	log := NewLog(10,
		WithLogger(zerolog.New(&buf)),
		WithRecorder(recorderFunc(func(_ context.Context, e Entry, max int) error {
			recorded = append(recorded, e)
			assert.Equal(t, 10, max)
			return errors.New("disk full")
		})),
	)

	e := log.Error(context.Background(), "backend unavailable")

	assert.Equal(t, "backend unavailable", e.Message)
	assert.Len(t, recorded, 1)
	assert.Equal(t, 1, log.Len())
	assert.Contains(t, buf.String(), "failed to persist activity entry")
	assert.Contains(t, buf.String(), "disk full")
}

func TestLog_ListenersSeeEveryEntry(t *testing.T) {
	var got []string
	log := NewLog(0, WithListener(func(e Entry) { got = append(got, string(e.Severity)+":"+e.Message) }))

	log.Info(context.Background(), "a")
	log.Error(context.Background(), "b")

	assert.Equal(t, []string{"info:a", "error:b"}, got)
}

func TestLog_MirrorsToLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLog(0, WithLogger(zerolog.New(&buf)))

	log.Error(context.Background(), "automation failed")

	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"severity":"error"`)
	assert.Contains(t, buf.String(), "automation failed")
}

func messages(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Message)
	}
	return out
}
