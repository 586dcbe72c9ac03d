package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"gorm.io/gorm"
)

// OTPRepository stores email one-time codes.
type OTPRepository interface {
	CreateOTP(ctx context.Context, otp *models.EmailOTP) error
	CountIssuedSince(ctx context.Context, userID uint, email string, since time.Time) (int64, error)
	// LatestPendingForUpdate locks and returns the newest unverified code, or nil.
	LatestPendingForUpdate(ctx context.Context, userID uint, email string) (*models.EmailOTP, error)
	SaveAttempt(ctx context.Context, otp *models.EmailOTP) error
	DeleteOTP(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID uint) error
}

type PostgresOTPRepository struct {
	db *gorm.DB
}

func NewPostgresOTPRepository(db *gorm.DB) *PostgresOTPRepository {
	return &PostgresOTPRepository{db: db}
}

func (r *PostgresOTPRepository) CreateOTP(ctx context.Context, otp *models.EmailOTP) error {
	otp.Email = strings.ToLower(otp.Email)
	return r.db.WithContext(ctx).Create(otp).Error
}

func (r *PostgresOTPRepository) CountIssuedSince(ctx context.Context, userID uint, email string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.EmailOTP{}).
		Where("user_id = ? AND email = ? AND created_at >= ?", userID, strings.ToLower(email), since).
		Count(&count).Error
	return count, err
}

func (r *PostgresOTPRepository) LatestPendingForUpdate(ctx context.Context, userID uint, email string) (*models.EmailOTP, error) {
	var otp models.EmailOTP
	err := forUpdate(r.db.WithContext(ctx)).
		Where("user_id = ? AND email = ? AND verified = ?", userID, strings.ToLower(email), false).
		Order("created_at DESC").
		First(&otp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *PostgresOTPRepository) SaveAttempt(ctx context.Context, otp *models.EmailOTP) error {
	return r.db.WithContext(ctx).Model(&models.EmailOTP{}).Where("id = ?", otp.ID).
		Updates(map[string]interface{}{"attempts": otp.Attempts, "verified": otp.Verified}).Error
}

func (r *PostgresOTPRepository) DeleteOTP(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.EmailOTP{}).Error
}

func (r *PostgresOTPRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.EmailOTP{}).Error
}
