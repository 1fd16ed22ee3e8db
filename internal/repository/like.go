package repository

import (
	"context"

	"firenet/internal/models"

	"gorm.io/gorm"
)

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	return translate(r.db.WithContext(ctx).Create(like).Error)
}

func (r *likeRepository) FindOne(ctx context.Context, userHandle, postID string) (*models.Like, error) {
	var like models.Like
	err := r.db.WithContext(ctx).
		Where("user_handle = ? AND post_id = ?", userHandle, postID).
		Limit(1).
		Take(&like).Error
	if err != nil {
		return nil, translate(err)
	}
	return &like, nil
}

func (r *likeRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Like{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *likeRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Like{})
	return res.RowsAffected, translate(res.Error)
}
