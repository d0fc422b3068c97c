package storage

import (
	"context"

	"gorm.io/gorm"

	"quill-server-go/internal/platform/errors"
)

// SubscriberRepository provides mailing-list persistence.
type SubscriberRepository interface {
	Create(ctx context.Context, subscriber *Subscriber) error
	Update(ctx context.Context, subscriber *Subscriber) error
	DeleteByEmail(ctx context.Context, email string) error
	FindByEmail(ctx context.Context, email string) (*Subscriber, error)
	List(ctx context.Context) ([]Subscriber, error)
	ListConfirmed(ctx context.Context) ([]Subscriber, error)
	// ConfirmedEmails feeds the mail notifier.
	ConfirmedEmails(ctx context.Context) ([]string, error)
}

type subscriberRepository struct {
	db *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) SubscriberRepository {
	return &subscriberRepository{db: db}
}

func (r *subscriberRepository) Create(ctx context.Context, subscriber *Subscriber) error {
	if err := r.db.WithContext(ctx).Create(subscriber).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "subscriber.create", "failed to create subscriber", err)
	}
	return nil
}

func (r *subscriberRepository) Update(ctx context.Context, subscriber *Subscriber) error {
	if err := r.db.WithContext(ctx).Save(subscriber).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "subscriber.update", "failed to update subscriber", err)
	}
	return nil
}

func (r *subscriberRepository) DeleteByEmail(ctx context.Context, email string) error {
	if err := r.db.WithContext(ctx).Where("email = ?", email).Delete(&Subscriber{}).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "subscriber.delete", "failed to delete subscriber", err)
	}
	return nil
}

func (r *subscriberRepository) FindByEmail(ctx context.Context, email string) (*Subscriber, error) {
	var subscriber Subscriber
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&subscriber).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "subscriber.find_by_email", "failed to find subscriber", err)
	}
	return &subscriber, nil
}

func (r *subscriberRepository) List(ctx context.Context) ([]Subscriber, error) {
	var subscribers []Subscriber
	if err := r.db.WithContext(ctx).Order("id").Find(&subscribers).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "subscriber.list", "failed to list subscribers", err)
	}
	return subscribers, nil
}

func (r *subscriberRepository) ListConfirmed(ctx context.Context) ([]Subscriber, error) {
	var subscribers []Subscriber
	err := r.db.WithContext(ctx).
		Where("confirmed = ?", true).
		Order("id").
		Find(&subscribers).Error
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "subscriber.list_confirmed", "failed to list subscribers", err)
	}
	return subscribers, nil
}

func (r *subscriberRepository) ConfirmedEmails(ctx context.Context) ([]string, error) {
	subscribers, err := r.ListConfirmed(ctx)
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(subscribers))
	for _, subscriber := range subscribers {
		emails = append(emails, subscriber.Email)
	}
	return emails, nil
}
