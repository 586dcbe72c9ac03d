package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"gorm.io/gorm"
)

// EmailRepository manages the secondary addresses of a user.
type EmailRepository interface {
	CreateEmail(ctx context.Context, email *models.UserEmail) error
	GetEmail(ctx context.Context, userID, id uint) (*models.UserEmail, error)
	// GetByAddress returns (nil, nil) when no row holds the address.
	GetByAddress(ctx context.Context, address string) (*models.UserEmail, error)
	ListByUser(ctx context.Context, userID uint) ([]models.UserEmail, error)
	// MarkVerified flags the user's row for address as verified, creating it if needed.
	MarkVerified(ctx context.Context, userID uint, address string) error
	DeleteEmail(ctx context.Context, userID, id uint) error
	DeleteByUser(ctx context.Context, userID uint) error
}

type PostgresEmailRepository struct {
	db *gorm.DB
}

func NewPostgresEmailRepository(db *gorm.DB) *PostgresEmailRepository {
	return &PostgresEmailRepository{db: db}
}

func (r *PostgresEmailRepository) CreateEmail(ctx context.Context, email *models.UserEmail) error {
	email.Email = strings.ToLower(email.Email)
	return r.db.WithContext(ctx).Create(email).Error
}

func (r *PostgresEmailRepository) GetEmail(ctx context.Context, userID, id uint) (*models.UserEmail, error) {
	var email models.UserEmail
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&email).Error; err != nil {
		return nil, err
	}
	return &email, nil
}

func (r *PostgresEmailRepository) GetByAddress(ctx context.Context, address string) (*models.UserEmail, error) {
	var email models.UserEmail
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(address)).Take(&email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &email, nil
}

func (r *PostgresEmailRepository) ListByUser(ctx context.Context, userID uint) ([]models.UserEmail, error) {
	var emails []models.UserEmail
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&emails).Error
	return emails, err
}

func (r *PostgresEmailRepository) MarkVerified(ctx context.Context, userID uint, address string) error {
	db := r.db.WithContext(ctx)
	address = strings.ToLower(address)
	res := db.Model(&models.UserEmail{}).Where("user_id = ? AND email = ?", userID, address).Update("verified", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return db.Create(&models.UserEmail{UserID: userID, Email: address, Verified: true, CreatedAt: time.Now()}).Error
}

func (r *PostgresEmailRepository) DeleteEmail(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.UserEmail{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresEmailRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.UserEmail{}).Error
}
