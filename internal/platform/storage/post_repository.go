package storage

import (
	"context"

	"gorm.io/gorm"

	"quill-server-go/internal/platform/errors"
)

// PostRepository provides blog post persistence.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*Post, error)
	FindBySlug(ctx context.Context, slug string) (*Post, error)
	ListPublished(ctx context.Context, limit, offset int) ([]Post, error)
	ListAll(ctx context.Context) ([]Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "post.create", "failed to create post", err)
	}
	return nil
}

func (r *postRepository) Update(ctx context.Context, post *Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "post.update", "failed to update post", err)
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&Post{}, id).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "post.delete", "failed to delete post", err)
	}
	return nil
}

func (r *postRepository) FindByID(ctx context.Context, id uint) (*Post, error) {
	var post Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "post.find_by_id", "failed to find post", err)
	}
	return &post, nil
}

func (r *postRepository) FindBySlug(ctx context.Context, slug string) (*Post, error) {
	var post Post
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&post).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "post.find_by_slug", "failed to find post", err)
	}
	return &post, nil
}

func (r *postRepository) ListPublished(ctx context.Context, limit, offset int) ([]Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var posts []Post
	err := r.db.WithContext(ctx).
		Where("published = ?", true).
		Order("published_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "post.list_published", "failed to list posts", err)
	}
	return posts, nil
}

func (r *postRepository) ListAll(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&posts).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "post.list_all", "failed to list posts", err)
	}
	return posts, nil
}
