package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus dispatches events to subscribers on a single goroutine, in
// publish order. Publishing never blocks; when the buffer is full the event
// is dropped and OnDrop hooks fire.
type EventBus struct {
	ch    chan envelope
	done  chan struct{}
	hooks hooks

	mu     sync.RWMutex
	closed bool
	subs   map[Event][]func(any)
}

// New creates a bus buffering up to size pending events.
func New(size int) *EventBus {
	return &EventBus{
		ch:   make(chan envelope, size),
		done: make(chan struct{}),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is done or Close drains the queue.
func (bus *EventBus) Start(ctx context.Context) {
	defer close(bus.done)
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-bus.ch:
			if !ok {
				return
			}
			bus.dispatch(env)
		}
	}
}

// Close stops accepting events and waits until the queued ones were
// dispatched. It must only be called after Start.
func (bus *EventBus) Close() {
	bus.mu.Lock()
	if bus.closed {
		bus.mu.Unlock()
		return
	}
	bus.closed = true
	close(bus.ch)
	bus.mu.Unlock()

	<-bus.done
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
	bus.runOnSubscribe(event)
}

func (bus *EventBus) publish(event Event, payload any) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	if bus.closed {
		bus.runOnDrop(event, payload)
		return
	}
	bus.send(event, payload)
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := append([]func(any){}, bus.subs[env.event]...)
	bus.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.runOnPanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

// PublishActivityAppended publishes EventActivityAppended.
func (bus *EventBus) PublishActivityAppended(p ActivityAppendedPayload) {
	bus.publish(EventActivityAppended, p)
}

// SubscribeActivityAppended registers fn for EventActivityAppended.
func (bus *EventBus) SubscribeActivityAppended(fn func(ActivityAppendedPayload)) {
	bus.subscribe(EventActivityAppended, func(p any) { fn(p.(ActivityAppendedPayload)) })
}

// PublishPhaseChanged publishes EventPhaseChanged.
func (bus *EventBus) PublishPhaseChanged(p PhaseChangedPayload) {
	bus.publish(EventPhaseChanged, p)
}

// SubscribePhaseChanged registers fn for EventPhaseChanged.
func (bus *EventBus) SubscribePhaseChanged(fn func(PhaseChangedPayload)) {
	bus.subscribe(EventPhaseChanged, func(p any) { fn(p.(PhaseChangedPayload)) })
}

// PublishPlanChanged publishes EventPlanChanged.
func (bus *EventBus) PublishPlanChanged(p PlanChangedPayload) {
	bus.publish(EventPlanChanged, p)
}

// SubscribePlanChanged registers fn for EventPlanChanged.
func (bus *EventBus) SubscribePlanChanged(fn func(PlanChangedPayload)) {
	bus.subscribe(EventPlanChanged, func(p any) { fn(p.(PlanChangedPayload)) })
}

// PublishTasksLoaded publishes EventTasksLoaded.
func (bus *EventBus) PublishTasksLoaded(p TasksLoadedPayload) {
	bus.publish(EventTasksLoaded, p)
}

// SubscribeTasksLoaded registers fn for EventTasksLoaded.
func (bus *EventBus) SubscribeTasksLoaded(fn func(TasksLoadedPayload)) {
	bus.subscribe(EventTasksLoaded, func(p any) { fn(p.(TasksLoadedPayload)) })
}
