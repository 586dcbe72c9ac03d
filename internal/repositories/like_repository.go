package repositories

import (
	"context"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	// InsertLike reports false when the user already likes the blog.
	InsertLike(ctx context.Context, like *models.Like) (bool, error)
	// DeleteLike reports false when there was nothing to delete.
	DeleteLike(ctx context.Context, userID uint, blogID string) (bool, error)
	HasUserLikedBlog(ctx context.Context, userID uint, blogID string) (bool, error)
	GetLikesCountByBlogID(ctx context.Context, blogID string) (int64, error)
	CountByBlogIDs(ctx context.Context, blogIDs []string) (map[string]int64, error)
	DeleteByBlogIDs(ctx context.Context, blogIDs []string) error
	DeleteByUser(ctx context.Context, userID uint) error
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

func (r *PostgresLikeRepository) InsertLike(ctx context.Context, like *models.Like) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, userID uint, blogID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("blog_id = ? AND user_id = ?", blogID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresLikeRepository) HasUserLikedBlog(ctx context.Context, userID uint, blogID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("blog_id = ? AND user_id = ?", blogID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresLikeRepository) GetLikesCountByBlogID(ctx context.Context, blogID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("blog_id = ?", blogID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresLikeRepository) CountByBlogIDs(ctx context.Context, blogIDs []string) (map[string]int64, error) {
	return countByBlog(r.db.WithContext(ctx).Model(&models.Like{}), blogIDs)
}

func (r *PostgresLikeRepository) DeleteByBlogIDs(ctx context.Context, blogIDs []string) error {
	if len(blogIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("blog_id IN ?", blogIDs).Delete(&models.Like{}).Error
}

func (r *PostgresLikeRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Like{}).Error
}
