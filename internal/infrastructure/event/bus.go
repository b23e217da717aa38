// Package event delivers domain events, such as OrderPlaced, to in-process
// subscribers.
package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jossiefancies/storefront/internal/domain/shared"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var _ shared.EventBus = (*InMemoryEventBus)(nil)

// InMemoryEventBus calls handlers inside Publish, or, when built with
// NewAsyncEventBus and started, on an ants pool. Handler failures are logged
// and never reach the publisher: a placed order stays placed even when its
// notification cannot be queued.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	log      *zap.Logger
	pool     *ants.Pool
	running  atomic.Bool
	inflight sync.WaitGroup
}

func NewInMemoryEventBus(log *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{registry: NewHandlerRegistry(), log: log.Named("events")}
}

// NewAsyncEventBus dispatches on at most workers goroutines
func NewAsyncEventBus(log *zap.Logger, workers int) (*InMemoryEventBus, error) {
	bus := NewInMemoryEventBus(log)
	pool, err := ants.NewPool(max(workers, 1),
		ants.WithPanicHandler(func(p any) { bus.log.Error("Event dispatch panicked", zap.Any("panic", p)) }))
	if err != nil {
		return nil, fmt.Errorf("event worker pool: %w", err)
	}
	bus.pool = pool
	return bus, nil
}

func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	async := b.pool != nil && b.running.Load()
	if async {
		// deliveries outlive the request that published them
		ctx = context.WithoutCancel(ctx)
	}
	for _, e := range events {
		for _, h := range b.registry.GetHandlers(e.EventType()) {
			if async {
				b.enqueue(ctx, h, e)
			} else {
				b.deliver(ctx, h, e)
			}
		}
	}
	return nil
}

// enqueue falls back to an inline delivery when the pool refuses the task
func (b *InMemoryEventBus) enqueue(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) {
	b.inflight.Add(1)
	if err := b.pool.Submit(func() {
		defer b.inflight.Done()
		b.deliver(ctx, h, e)
	}); err != nil {
		b.inflight.Done()
		b.log.Warn("Event pool rejected delivery, handling inline", zap.String("event_type", e.EventType()), zap.Error(err))
		b.deliver(ctx, h, e)
	}
}

func (b *InMemoryEventBus) deliver(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) {
	if err := safeHandle(ctx, h, e); err != nil {
		b.log.Error("Event handler failed",
			zap.String("event_type", e.EventType()),
			zap.String("event_id", e.EventID().String()),
			zap.String("aggregate_id", e.AggregateID().String()),
			zap.Error(err))
	}
}

func safeHandle(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, e)
}

// Subscribe uses the handler's own EventTypes when none are given
func (b *InMemoryEventBus) Subscribe(h shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = h.EventTypes()
	}
	b.registry.Register(h, eventTypes...)
	b.log.Debug("Event handler subscribed", zap.Strings("event_types", eventTypes))
}

func (b *InMemoryEventBus) Unsubscribe(h shared.EventHandler) {
	b.registry.Unregister(h)
}

func (b *InMemoryEventBus) Start(context.Context) error {
	b.running.Store(true)
	b.log.Info("Event bus started", zap.Bool("async", b.pool != nil), zap.Strings("event_types", b.registry.EventTypes()))
	return nil
}

// Stop switches Publish back to inline delivery, waits for queued
// deliveries (bounded by ctx) and releases the pool
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)

	drained := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(drained)
	}()

	var err error
	select {
	case <-drained:
	case <-ctx.Done():
		err = ctx.Err()
		b.log.Warn("Event bus stopped with deliveries in flight")
	}
	if b.pool != nil {
		b.pool.Release()
	}
	return err
}
