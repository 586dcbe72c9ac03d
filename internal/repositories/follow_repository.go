package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	// GetFollow returns (nil, nil) when the pair has no edge.
	GetFollow(ctx context.Context, followerID, followingID uint) (*models.Follow, error)
	// GetFollowForUpdate is GetFollow holding a row lock until the transaction ends.
	GetFollowForUpdate(ctx context.Context, followerID, followingID uint) (*models.Follow, error)
	GetFollowByIDForUpdate(ctx context.Context, id uint) (*models.Follow, error)
	// InsertFollow reports false when an edge for the pair already exists.
	InsertFollow(ctx context.Context, follow *models.Follow) (bool, error)
	ApproveFollow(ctx context.Context, id uint) error
	DeleteFollow(ctx context.Context, id uint) error
	IsActiveFollower(ctx context.Context, followerID, followingID uint) (bool, error)
	GetFollowersCount(ctx context.Context, userID uint) (int64, error)
	GetFollowingCount(ctx context.Context, userID uint) (int64, error)
	GetPendingRequests(ctx context.Context, userID uint) ([]models.Follow, error)
	GetFollowers(ctx context.Context, userID uint) ([]models.User, error)
	GetFollowing(ctx context.Context, userID uint) ([]models.User, error)
	DeleteByUser(ctx context.Context, userID uint) ([]uint, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) GetFollow(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	return r.find(r.db.WithContext(ctx), followerID, followingID)
}

func (r *PostgresFollowRepository) GetFollowForUpdate(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	return r.find(forUpdate(r.db.WithContext(ctx)), followerID, followingID)
}

func (r *PostgresFollowRepository) find(db *gorm.DB, followerID, followingID uint) (*models.Follow, error) {
	var follow models.Follow
	err := db.Where("follower_id = ? AND following_id = ?", followerID, followingID).Take(&follow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &follow, nil
}

func (r *PostgresFollowRepository) GetFollowByIDForUpdate(ctx context.Context, id uint) (*models.Follow, error) {
	var follow models.Follow
	if err := forUpdate(r.db.WithContext(ctx)).First(&follow, id).Error; err != nil {
		return nil, err
	}
	return &follow, nil
}

func (r *PostgresFollowRepository) InsertFollow(ctx context.Context, follow *models.Follow) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(follow)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PostgresFollowRepository) ApproveFollow(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Follow{}).Where("id = ?", id).Update("is_approved", true).Error
}

func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Follow{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresFollowRepository) IsActiveFollower(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ? AND is_approved = ?", followerID, followingID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) GetFollowersCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("following_id = ? AND is_approved = ?", userID, true).Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) GetFollowingCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ? AND is_approved = ?", userID, true).Count(&count).Error
	return count, err
}

// GetPendingRequests lists unapproved edges pointing at userID, newest first.
func (r *PostgresFollowRepository) GetPendingRequests(ctx context.Context, userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.WithContext(ctx).
		Preload("Follower.Profile").
		Where("following_id = ? AND is_approved = ?", userID, false).
		Order("created_at DESC").
		Find(&follows).Error
	return follows, err
}

func (r *PostgresFollowRepository) GetFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Preload("Profile").Where("id IN (?)",
		r.db.Table("follows").Select("follower_id").Where("following_id = ? AND is_approved = ?", userID, true),
	).Find(&users).Error
	return users, err
}

func (r *PostgresFollowRepository) GetFollowing(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Preload("Profile").Where("id IN (?)",
		r.db.Table("follows").Select("following_id").Where("follower_id = ? AND is_approved = ?", userID, true),
	).Find(&users).Error
	return users, err
}

// DeleteByUser removes every edge touching userID and returns the other
// endpoints, so their cached counts can be dropped.
func (r *PostgresFollowRepository) DeleteByUser(ctx context.Context, userID uint) ([]uint, error) {
	var follows []models.Follow
	db := r.db.WithContext(ctx)
	if err := db.Where("follower_id = ? OR following_id = ?", userID, userID).Find(&follows).Error; err != nil {
		return nil, err
	}
	if err := db.Where("follower_id = ? OR following_id = ?", userID, userID).Delete(&models.Follow{}).Error; err != nil {
		return nil, err
	}
	others := make([]uint, 0, len(follows))
	for _, f := range follows {
		if f.FollowerID == userID {
			others = append(others, f.FollowingID)
		} else {
			others = append(others, f.FollowerID)
		}
	}
	return others, nil
}
