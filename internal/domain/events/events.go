package events

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"
)

// Topics published by the blog domain.
const (
	TopicPostPublished   = "post.published"
	TopicSubscriberAdded = "subscriber.added"
)

// PostPublished is the payload for TopicPostPublished.
type PostPublished struct {
	PostID uint
	Title  string
	Slug   string
}

// SubscriberAdded is the payload for TopicSubscriberAdded.
type SubscriberAdded struct {
	Email string
}

type queued struct {
	topic string
	args  []any
}

// Bus wraps EventBus with a bounded async worker pool so publishers
// (request handlers) never block on slow subscribers. One Bus is
// constructed at bootstrap and injected; there is no package-level
// instance.
type Bus struct {
	bus       evbus.Bus
	workerNum int
	workChan  chan queued
	stopChan  chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

func NewBus(workerNum int) *Bus {
	if workerNum <= 0 {
		workerNum = 4
	}
	return &Bus{
		bus:       evbus.New(),
		workerNum: workerNum,
		workChan:  make(chan queued, 256),
		stopChan:  make(chan struct{}),
	}
}

// Start launches the worker pool.
func (b *Bus) Start() {
	for i := 0; i < b.workerNum; i++ {
		b.wg.Add(1)
		go b.worker()
	}
}

// Stop drains the workers and waits for them to exit.
func (b *Bus) Stop() {
	b.stopOnce.Do(func() { close(b.stopChan) })
	b.wg.Wait()
}

func (b *Bus) worker() {
	defer b.wg.Done()
	for {
		select {
		case <-b.stopChan:
			return
		case event := <-b.workChan:
			b.bus.Publish(event.topic, event.args...)
		}
	}
}

// Subscribe registers a handler for a topic.
func (b *Bus) Subscribe(topic string, fn any) error {
	return b.bus.Subscribe(topic, fn)
}

// Publish delivers an event synchronously to all subscribers.
func (b *Bus) Publish(topic string, args ...any) {
	b.bus.Publish(topic, args...)
}

// PublishAsync enqueues an event for worker delivery. Events are
// dropped if the queue is full or the bus is stopping; event
// delivery is best-effort and never blocks the caller.
func (b *Bus) PublishAsync(topic string, args ...any) {
	select {
	case b.workChan <- queued{topic: topic, args: args}:
	case <-b.stopChan:
	default:
	}
}
