// Package activity is the user facing, append-only record of what the
// orchestrator did: task loads, automation runs and their outcomes.
package activity

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Severity classifies an entry for display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Entry is one immutable activity record.
type Entry struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

// Recorder persists entries as they are appended.
type Recorder interface {
	Record(ctx context.Context, e Entry, maxEntries int) error
}

// Listener is called synchronously for every appended entry.
type Listener func(Entry)

// Log is the in-process activity sink. Append always succeeds; persistence
// failures are reported on the structured logger only.
type Log struct {
	mu         sync.Mutex
	entries    []Entry
	maxEntries int
	recorder   Recorder
	listeners  []Listener
	logger     zerolog.Logger
	now        func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithRecorder persists every appended entry.
func WithRecorder(r Recorder) Option {
	return func(l *Log) { l.recorder = r }
}

// WithListener registers fn to observe appended entries.
func WithListener(fn Listener) Option {
	return func(l *Log) { l.listeners = append(l.listeners, fn) }
}

// WithLogger mirrors entries to a structured logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Log) { l.logger = logger }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithHistory seeds the log with previously recorded entries.
func WithHistory(entries []Entry) Option {
	return func(l *Log) { l.entries = slices.Clone(entries) }
}

// NewLog creates a Log keeping at most maxEntries entries (0 keeps all).
func NewLog(maxEntries int, opts ...Option) *Log {
	l := &Log{
		maxEntries: maxEntries,
		logger:     zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.entries = evict(l.entries, maxEntries)
	return l
}

// Append records a message and returns the stored entry.
func (l *Log) Append(ctx context.Context, message string, sev Severity) Entry {
	l.mu.Lock()
	e := Entry{
		ID:        newID(),
		Message:   message,
		Severity:  sev,
		CreatedAt: l.now(),
	}
	l.entries = evict(append(l.entries, e), l.maxEntries)
	listeners := slices.Clone(l.listeners)
	l.mu.Unlock()

	l.mirror(ctx, e)

	if l.recorder != nil {
		if err := l.recorder.Record(ctx, e, l.maxEntries); err != nil {
			l.logger.Warn().Ctx(ctx).Err(err).Str("entry_id", e.ID).Msg("failed to persist activity entry")
		}
	}

	for _, fn := range listeners {
		fn(e)
	}

	return e
}

// Info appends an info entry.
func (l *Log) Info(ctx context.Context, message string) Entry {
	return l.Append(ctx, message, SeverityInfo)
}

// Success appends a success entry.
func (l *Log) Success(ctx context.Context, message string) Entry {
	return l.Append(ctx, message, SeveritySuccess)
}

// Error appends an error entry.
func (l *Log) Error(ctx context.Context, message string) Entry {
	return l.Append(ctx, message, SeverityError)
}

// Entries returns the retained entries in append order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Log) mirror(ctx context.Context, e Entry) {
	var ev *zerolog.Event
	switch e.Severity {
	case SeverityError:
		ev = l.logger.Error()
	default:
		ev = l.logger.Info()
	}
	ev.Ctx(ctx).Str("entry_id", e.ID).Str("severity", string(e.Severity)).Msg(e.Message)
}

// evict drops the oldest entries beyond max.
func evict(entries []Entry, max int) []Entry {
	if max <= 0 || len(entries) <= max {
		return entries
	}
	return slices.Clone(entries[len(entries)-max:])
}

// newID returns a time ordered unique identifier.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
