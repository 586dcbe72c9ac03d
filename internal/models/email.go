package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// UserEmail is an additional address attached to a User.
type UserEmail struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Email     string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Verified  bool      `json:"verified" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// OTPOutcome is the result of checking a submitted code.
type OTPOutcome string

const (
	OTPVerified            OTPOutcome = "verified"
	OTPInvalid             OTPOutcome = "invalid"
	OTPExpired             OTPOutcome = "expired"
	OTPMaxAttemptsExceeded OTPOutcome = "max_attempts_exceeded"
)

const (
	DefaultOTPMaxAttempts = 5
	DefaultOTPTTL         = 10 * time.Minute
)

// EmailOTP is a one-time code sent to Email on behalf of UserID.
// Only a bcrypt hash of the code is stored.
type EmailOTP struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;index:idx_otp_user_email"`
	Email       string    `json:"email" gorm:"size:254;not null;index:idx_otp_user_email"`
	CodeHash    string    `json:"-" gorm:"size:128;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	ExpiresAt   time.Time `json:"expires_at"`
	Attempts    int       `json:"attempts" gorm:"not null;default:0"`
	MaxAttempts int       `json:"max_attempts" gorm:"not null;default:5"`
	Verified    bool      `json:"verified" gorm:"not null;default:false"`
}

func (EmailOTP) TableName() string {
	return "email_otps"
}

// SetCode stores the hash of code.
func (o *EmailOTP) SetCode(code string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	o.CodeHash = string(hash)
	return nil
}

// Check consumes one attempt and evaluates code against the stored hash.
// The attempt is counted before anything else, so a correct code submitted
// after the budget is spent is still refused.
func (o *EmailOTP) Check(code string, now time.Time) OTPOutcome {
	o.Attempts++
	if o.Attempts > o.MaxAttempts {
		return OTPMaxAttemptsExceeded
	}
	if now.After(o.ExpiresAt) {
		return OTPExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(o.CodeHash), []byte(code)) != nil {
		return OTPInvalid
	}
	o.Verified = true
	return OTPVerified
}

type AddEmailRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

type SendOTPRequest struct {
	Email string `json:"email" form:"email" validate:"omitempty,email"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
	Code  string `json:"code" form:"code" validate:"required,numeric"`
}
