package ui

import (
	"context"

	"bookkeeping/internal/log"
)

// LogSurface renders every side effect as a log record. It is what a
// headless process uses when no front end is attached.
type LogSurface struct {
	logger *log.Logger
}

var _ Surface = (*LogSurface)(nil)

func NewLogSurface(logger *log.Logger) *LogSurface {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &LogSurface{logger: logger.WithComponent(log.ComponentUI)}
}

func (s *LogSurface) Toast(ctx context.Context, t Toast) {
	if t.Icon == IconError {
		s.logger.WarnContext(ctx, "Toast", "title", t.Title, "icon", t.Icon, "duration", t.Duration)
		return
	}
	s.logger.InfoContext(ctx, "Toast", "title", t.Title, "icon", t.Icon, "duration", t.Duration)
}

func (s *LogSurface) ShowLoading(ctx context.Context, mask bool) {
	s.logger.DebugContext(ctx, "Loading shown", "mask", mask)
}

func (s *LogSurface) HideLoading(ctx context.Context) {
	s.logger.DebugContext(ctx, "Loading hidden")
}

func (s *LogSurface) Redirect(ctx context.Context, path string) {
	s.logger.InfoContext(ctx, "Redirect", log.FieldPath, "/"+path)
}

// Multi fans every side effect out to all of its surfaces, in order.
type Multi []Surface

var _ Surface = Multi(nil)

func (m Multi) Toast(ctx context.Context, t Toast) {
	for _, s := range m {
		s.Toast(ctx, t)
	}
}

func (m Multi) ShowLoading(ctx context.Context, mask bool) {
	for _, s := range m {
		s.ShowLoading(ctx, mask)
	}
}

func (m Multi) HideLoading(ctx context.Context) {
	for _, s := range m {
		s.HideLoading(ctx)
	}
}

func (m Multi) Redirect(ctx context.Context, path string) {
	for _, s := range m {
		s.Redirect(ctx, path)
	}
}

// Nop ignores everything.
type Nop struct{}

var _ Surface = Nop{}

func (Nop) Toast(context.Context, Toast)      {}
func (Nop) ShowLoading(context.Context, bool) {}
func (Nop) HideLoading(context.Context)       {}
func (Nop) Redirect(context.Context, string)  {}
