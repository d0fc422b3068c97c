package events

import (
	"sync"
	"testing"
	"time"
)

func TestPublishSynchronous(t *testing.T) {
	bus := NewBus(2)

	var got PostPublished
	err := bus.Subscribe(TopicPostPublished, func(event PostPublished) {
		got = event
	})
	if err != nil {
		t.Fatalf("Subscribe error: %v", err)
	}

	bus.Publish(TopicPostPublished, PostPublished{PostID: 7, Title: "Hello", Slug: "hello"})

	if got.PostID != 7 || got.Slug != "hello" {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestPublishAsyncDeliversViaWorkers(t *testing.T) {
	bus := NewBus(2)
	bus.Start()
	t.Cleanup(bus.Stop)

	var (
		mu     sync.Mutex
		emails []string
		done   = make(chan struct{}, 1)
	)
	err := bus.Subscribe(TopicSubscriberAdded, func(event SubscriberAdded) {
		mu.Lock()
		emails = append(emails, event.Email)
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Subscribe error: %v", err)
	}

	bus.PublishAsync(TopicSubscriberAdded, SubscriberAdded{Email: "a@x.com"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async event not delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(emails) != 1 || emails[0] != "a@x.com" {
		t.Fatalf("unexpected deliveries: %v", emails)
	}
}

func TestPublishAsyncAfterStopDoesNotBlock(t *testing.T) {
	bus := NewBus(1)
	bus.Start()
	bus.Stop()

	finished := make(chan struct{})
	go func() {
		bus.PublishAsync(TopicPostPublished, PostPublished{PostID: 1})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("PublishAsync blocked after Stop")
	}
}
