package repositories

import (
	"context"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	// GetThreadsByBlogID returns approved top-level comments with their replies.
	GetThreadsByBlogID(ctx context.Context, blogID string) ([]models.Comment, error)
	CountByBlogIDs(ctx context.Context, blogIDs []string) (map[string]int64, error)
	DeleteByBlogIDs(ctx context.Context, blogIDs []string) error
	DeleteByUser(ctx context.Context, userID uint) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *PostgresCommentRepository) GetThreadsByBlogID(ctx context.Context, blogID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User.Profile").
		Preload("Replies", "is_approved = ?", true, func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Replies.User.Profile").
		Where("blog_id = ? AND parent_id IS NULL AND is_approved = ?", blogID, true).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

func (r *PostgresCommentRepository) CountByBlogIDs(ctx context.Context, blogIDs []string) (map[string]int64, error) {
	return countByBlog(r.db.WithContext(ctx).Model(&models.Comment{}).Where("is_approved = ?", true), blogIDs)
}

func (r *PostgresCommentRepository) DeleteByBlogIDs(ctx context.Context, blogIDs []string) error {
	if len(blogIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("blog_id IN ?", blogIDs).Delete(&models.Comment{}).Error
}

// DeleteByUser removes the user's comments and every reply beneath them.
func (r *PostgresCommentRepository) DeleteByUser(ctx context.Context, userID uint) error {
	db := r.db.WithContext(ctx)
	var ids []uint
	if err := db.Model(&models.Comment{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
		return err
	}
	for len(ids) > 0 {
		var children []uint
		if err := db.Model(&models.Comment{}).Where("parent_id IN ?", ids).Pluck("id", &children).Error; err != nil {
			return err
		}
		if err := db.Where("id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		ids = children
	}
	return nil
}

// countByBlog groups a count query by blog_id, filling missing blogs with zero.
func countByBlog(db *gorm.DB, blogIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(blogIDs))
	for _, id := range blogIDs {
		result[id] = 0
	}
	if len(blogIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		BlogID string
		Count  int64
	}
	err := db.Select("blog_id, COUNT(*) AS count").Where("blog_id IN ?", blogIDs).Group("blog_id").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.BlogID] = row.Count
	}
	return result, nil
}
