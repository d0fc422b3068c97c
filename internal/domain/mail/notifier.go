package mail

import (
	"context"
	"fmt"
	"time"

	"quill-server-go/internal/domain/events"
)

// Logger provides the minimal logging contract required by the notifier.
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
}

// Sender delivers one message. Actual delivery (SMTP, provider API)
// lives outside this repository; the default implementation only
// records the intent.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SubscriberSource lists the confirmed mailing-list addresses.
type SubscriberSource interface {
	ConfirmedEmails(ctx context.Context) ([]string, error)
}

type logSender struct {
	logger Logger
}

// NewLogSender returns a Sender that logs instead of delivering.
func NewLogSender(logger Logger) Sender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(_ context.Context, to, subject, _ string) error {
	s.logger.Info("[MAIL] would deliver %q to %s", subject, to)
	return nil
}

// Notifier fans newly published posts out to the mailing list. It
// consumes domain events so publishing a post never waits on mail.
type Notifier struct {
	subscribers SubscriberSource
	sender      Sender
	logger      Logger
	timeout     time.Duration
}

func NewNotifier(subscribers SubscriberSource, sender Sender, logger Logger) *Notifier {
	return &Notifier{
		subscribers: subscribers,
		sender:      sender,
		logger:      logger,
		timeout:     30 * time.Second,
	}
}

// Register subscribes the notifier to the event bus.
func (n *Notifier) Register(bus *events.Bus) error {
	return bus.Subscribe(events.TopicPostPublished, n.OnPostPublished)
}

// OnPostPublished sends the new-post announcement to every confirmed
// subscriber. Failures are logged per recipient and do not stop the
// fan-out.
func (n *Notifier) OnPostPublished(event events.PostPublished) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	emails, err := n.subscribers.ConfirmedEmails(ctx)
	if err != nil {
		n.logger.Warn("[MAIL] subscriber lookup failed for post %d: %v", event.PostID, err)
		return
	}

	subject := fmt.Sprintf("New post: %s", event.Title)
	body := fmt.Sprintf("A new post is up: %s\n/posts/%s\n", event.Title, event.Slug)
	sent := 0
	for _, email := range emails {
		if err := n.sender.Send(ctx, email, subject, body); err != nil {
			n.logger.Warn("[MAIL] delivery to %s failed: %v", email, err)
			continue
		}
		sent++
	}
	n.logger.Info("[MAIL] post %d announced to %d/%d subscribers", event.PostID, sent, len(emails))
}
