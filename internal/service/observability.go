package service

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// UseCaseEvent captures lightweight execution telemetry for a service use case.
type UseCaseEvent struct {
	Name      string
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

// DefaultSlowUseCase is the duration above which a successful use case is
// logged at warn level. A plan walks at most a few years of days, so
// anything slower points at a pathological calendar or a locked database.
const DefaultSlowUseCase = 2 * time.Second

type logUseCaseObserver struct {
	logger *slog.Logger
	slow   time.Duration
}

type LogObserverOption func(*logUseCaseObserver)

// WithSlowThreshold overrides DefaultSlowUseCase; zero disables the check.
func WithSlowThreshold(d time.Duration) LogObserverOption {
	return func(o *logUseCaseObserver) { o.slow = d }
}

// NewLogUseCaseObserver writes service use-case events to the provided writer.
func NewLogUseCaseObserver(w io.Writer, opts ...LogObserverOption) UseCaseObserver {
	if w == nil {
		return NoopUseCaseObserver{}
	}
	return NewSlogUseCaseObserver(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})), opts...)
}

// NewSlogUseCaseObserver routes use-case events through an existing logger.
func NewSlogUseCaseObserver(logger *slog.Logger, opts ...LogObserverOption) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	o := &logUseCaseObserver{logger: logger, slow: DefaultSlowUseCase}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := make([]any, 0, 8+len(event.Fields)*2)
	attrs = append(attrs,
		"use_case", event.Name,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success,
	)
	for k, v := range event.Fields {
		attrs = append(attrs, k, v)
	}
	switch {
	case event.Err != nil:
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.ErrorContext(ctx, "service_use_case", attrs...)
	case o.slow > 0 && event.Duration > o.slow:
		o.logger.WarnContext(ctx, "service_use_case_slow", attrs...)
	default:
		o.logger.InfoContext(ctx, "service_use_case", attrs...)
	}
}

// multiObserver forwards each event to every observer in order.
type multiObserver []UseCaseObserver

func (m multiObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	for _, o := range m {
		o.ObserveUseCase(ctx, event)
	}
}

// useCaseObserverOrNoop combines the non-nil observers; none yields a no-op.
func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	var live multiObserver
	for _, obs := range observers {
		if obs != nil {
			live = append(live, obs)
		}
	}
	switch len(live) {
	case 0:
		return NoopUseCaseObserver{}
	case 1:
		return live[0]
	}
	return live
}
