package storage

import (
	"context"

	"gorm.io/gorm"

	"quill-server-go/internal/platform/errors"
)

// CommentRepository provides comment persistence.
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	Delete(ctx context.Context, id uint) error
	ListByPost(ctx context.Context, postID uint) ([]Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "comment.create", "failed to create comment", err)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&Comment{}, id).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "comment.delete", "failed to delete comment", err)
	}
	return nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]Comment, error) {
	var comments []Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at").
		Find(&comments).Error
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "comment.list_by_post", "failed to list comments", err)
	}
	return comments, nil
}
