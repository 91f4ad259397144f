// Package printer writes human facing command output to stderr.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/marcelomcd/apontador/internal/core/activity"
	"github.com/marcelomcd/apontador/internal/core/styles"
)

type ctxKey struct{}

// Printer renders styled status lines.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// New creates a printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// NewContext returns a context carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the printer stored in ctx, or one writing to stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

func (p *Printer) line(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.w, s)
}

// Printf prints an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

// Infof prints an informational line.
func (p *Printer) Infof(format string, args ...any) {
	p.line(styles.TextPrimaryStyle.Render(styles.IconInfo) + " " + fmt.Sprintf(format, args...))
}

// Successf prints a success line.
func (p *Printer) Successf(format string, args ...any) {
	p.line(styles.TextSuccessStyle.Render(styles.IconSuccess) + " " + fmt.Sprintf(format, args...))
}

// Warnf prints a warning line.
func (p *Printer) Warnf(format string, args ...any) {
	p.line(styles.TextWarningStyle.Render(styles.IconWarning) + " " + fmt.Sprintf(format, args...))
}

// Errorf prints an error line.
func (p *Printer) Errorf(format string, args ...any) {
	p.line(styles.TextErrorStyle.Render(styles.IconError) + " " + fmt.Sprintf(format, args...))
}

// Entry prints an activity entry as it is appended.
func (p *Printer) Entry(e activity.Entry) {
	style, icon := styles.Severity(e.Severity)
	p.line(fmt.Sprintf("%s %s %s",
		styles.TextMutedStyle.Render(e.CreatedAt.Local().Format("15:04:05")),
		style.Render(icon),
		e.Message,
	))
}
