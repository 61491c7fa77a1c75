package agents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
)

const (
	instrumentation = "github.com/JaimeStill/agent-registry/internal/agents"

	// DefaultTimeout bounds lock acquisition plus the operation.
	DefaultTimeout = 5 * time.Second
)

// Config configures the registry.
type Config struct {
	// Timeout bounds each operation, including waiting for the lock.
	Timeout time.Duration

	// Seed is written by Initialize when no document exists.
	Seed []Agent

	// TracerProvider and MeterProvider default to the otel globals.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

type repo struct {
	store   *Store
	sem     *semaphore.Weighted
	timeout time.Duration
	seed    []Agent
	logger  *slog.Logger
	tracer  trace.Tracer
	ops     metric.Int64Counter
}

// New creates the registry over store.
func New(store *Store, cfg Config, logger *slog.Logger) (System, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.MeterProvider == nil {
		cfg.MeterProvider = otel.GetMeterProvider()
	}

	ops, err := cfg.MeterProvider.Meter(instrumentation).Int64Counter(
		"agents.operations",
		metric.WithDescription("Registry operations by name and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create operations counter: %w", err)
	}

	return &repo{
		store:   store,
		sem:     semaphore.NewWeighted(1),
		timeout: cfg.Timeout,
		seed:    cfg.Seed,
		logger:  logger.With("system", "agents"),
		tracer:  cfg.TracerProvider.Tracer(instrumentation),
		ops:     ops,
	}, nil
}

func (r *repo) Initialize(ctx context.Context) error {
	return r.run(ctx, "Initialize", func(ctx context.Context, _ trace.Span) error {
		seeded, err := r.store.Initialize(ctx, r.seed)
		if err != nil {
			return err
		}
		if seeded {
			r.logger.Info("agents seeded", "document", r.store.Key(), "count", len(r.seed))
		}
		return nil
	})
}

func (r *repo) List(ctx context.Context) (*Collection, error) {
	var result *Collection
	err := r.run(ctx, "List", func(ctx context.Context, span trace.Span) error {
		c, err := r.store.LoadAll(ctx)
		if err != nil {
			return err
		}
		span.SetAttributes(attribute.Int("agent.count", len(c.Agents)))
		result = c
		return nil
	})
	return result, err
}

func (r *repo) Find(ctx context.Context, id int) (*Agent, error) {
	var result *Agent
	err := r.run(ctx, "Find", func(ctx context.Context, span trace.Span) error {
		span.SetAttributes(attribute.Int("agent.id", id))

		c, err := r.store.LoadAll(ctx)
		if err != nil {
			return err
		}

		i := c.Find(id)
		if i < 0 {
			return fmt.Errorf("%w: %d", ErrNotFound, id)
		}

		a := c.Agents[i]
		result = &a
		return nil
	})
	return result, err
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Agent, error) {
	var result *Agent
	err := r.run(ctx, "Create", func(ctx context.Context, span trace.Span) error {
		c, err := r.store.LoadAll(ctx)
		if err != nil {
			return err
		}

		id, err := NextID(c.Agents)
		if err != nil {
			return err
		}

		a := cmd.agent(id)
		span.SetAttributes(attribute.Int("agent.id", a.ID))

		if err := Validate(a); err != nil {
			return err
		}

		c.Agents = append(c.Agents, a)
		if err := r.store.SaveAll(ctx, c); err != nil {
			return err
		}

		r.logger.Info("agent created", "id", a.ID, "name", a.Name)
		result = &a
		return nil
	})
	return result, err
}

func (r *repo) Update(ctx context.Context, id int, cmd UpdateCommand) (*Agent, error) {
	var result *Agent
	err := r.run(ctx, "Update", func(ctx context.Context, span trace.Span) error {
		span.SetAttributes(attribute.Int("agent.id", id))

		if cmd.ID != nil && *cmd.ID != id {
			return fmt.Errorf("%w: body id %d, path id %d", ErrIDMismatch, *cmd.ID, id)
		}

		c, err := r.store.LoadAll(ctx)
		if err != nil {
			return err
		}

		i := c.Find(id)
		if i < 0 {
			return fmt.Errorf("%w: %d", ErrNotFound, id)
		}

		a := cmd.apply(c.Agents[i])
		if err := Validate(a); err != nil {
			return err
		}

		c.Agents[i] = a
		if err := r.store.SaveAll(ctx, c); err != nil {
			return err
		}

		r.logger.Info("agent updated", "id", a.ID, "name", a.Name)
		result = &a
		return nil
	})
	return result, err
}

func (r *repo) Delete(ctx context.Context, id int) error {
	return r.run(ctx, "Delete", func(ctx context.Context, span trace.Span) error {
		span.SetAttributes(attribute.Int("agent.id", id))

		c, err := r.store.LoadAll(ctx)
		if err != nil {
			return err
		}

		i := c.Find(id)
		if i < 0 {
			return fmt.Errorf("%w: %d", ErrNotFound, id)
		}

		c.Agents = append(c.Agents[:i], c.Agents[i+1:]...)
		if err := r.store.SaveAll(ctx, c); err != nil {
			return err
		}

		r.logger.Info("agent deleted", "id", id)
		return nil
	})
}

// run executes fn inside the critical section under a bounded context and
// records a span and an operation count.
func (r *repo) run(ctx context.Context, op string, fn func(context.Context, trace.Span) error) error {
	ctx, span := r.tracer.Start(ctx, "agents."+op)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.locked(ctx, op, func() error {
		return fn(ctx, span)
	})

	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	r.ops.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))

	return err
}

func (r *repo) locked(ctx context.Context, op string, fn func() error) error {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBusy, op, err)
	}
	defer r.sem.Release(1)

	return fn()
}
