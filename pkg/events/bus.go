package events

import (
	"sync"
)

type EventType string

const (
	CommandExecuted  EventType = "command:executed"
	CommandSimulated EventType = "command:simulated"
	CommandFailed    EventType = "command:failed"
	QueueFinished    EventType = "queue:finished"
)

// CommandPayload is attached to command events.
type CommandPayload struct {
	Index       int
	Description string
	Path        string
	Err         error
}

// QueuePayload is attached to QueueFinished.
type QueuePayload struct {
	Commands int
	Simulate bool
}

type Event struct {
	Type    EventType
	Payload interface{}
}

type Handler func(Event)

type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

func (b *Bus) Subscribe(topic EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
}

// SubscribeAll registers handler for every command and queue event.
func (b *Bus) SubscribeAll(handler Handler) {
	for _, t := range []EventType{CommandExecuted, CommandSimulated, CommandFailed, QueueFinished} {
		b.Subscribe(t, handler)
	}
}

// Publish delivers event to its handlers synchronously. A nil bus drops it.
func (b *Bus) Publish(event Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, h := range b.handlers[event.Type] {
		h(event)
	}
}
