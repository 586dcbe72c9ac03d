package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/repositories"
	"github.com/anonto42/blogsphere/backend/pkg/logger"
	"github.com/google/uuid"
)

// Mailer delivers plain-text mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// OTPConfig tunes code issuing. Zero fields fall back to the defaults.
type OTPConfig struct {
	Length      int
	TTL         time.Duration
	MaxAttempts int
	RateWindow  time.Duration
	RateLimit   int64
}

func (c OTPConfig) withDefaults() OTPConfig {
	if c.Length <= 0 {
		c.Length = 6
	}
	if c.TTL <= 0 {
		c.TTL = models.DefaultOTPTTL
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = models.DefaultOTPMaxAttempts
	}
	if c.RateWindow <= 0 {
		c.RateWindow = 15 * time.Minute
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 3
	}
	return c
}

// OTPService issues and verifies email one-time codes.
type OTPService struct {
	store  *repositories.Store
	mailer Mailer
	cfg    OTPConfig
	now    func() time.Time
}

func NewOTPService(store *repositories.Store, mailer Mailer, cfg OTPConfig) *OTPService {
	return &OTPService{store: store, mailer: mailer, cfg: cfg.withDefaults(), now: time.Now}
}

// GenerateCode draws a code uniformly from [10^(n-1), 10^n - 1]; it never
// starts with a zero.
func GenerateCode(length int) (string, error) {
	if length < 1 || length > 18 {
		return "", fmt.Errorf("unsupported code length %d", length)
	}
	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length-1)), nil)
	high := new(big.Int).Mul(low, big.NewInt(10))
	n, err := rand.Int(rand.Reader, new(big.Int).Sub(high, low))
	if err != nil {
		return "", err
	}
	return n.Add(n, low).String(), nil
}

// Issue creates a code for (userID, email) and mails it. The rate limit is
// checked under a lock on the user row so concurrent requests cannot slip
// past it. If the mail cannot be sent the new row is deleted again.
func (s *OTPService) Issue(ctx context.Context, userID uint, email string) (*models.EmailOTP, error) {
	code, err := GenerateCode(s.cfg.Length)
	if err != nil {
		return nil, err
	}

	var otp *models.EmailOTP
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Users.LockUser(ctx, userID); err != nil {
			return notFoundOr(err, ErrUserNotFound)
		}
		now := s.now()
		recent, err := tx.OTPs.CountIssuedSince(ctx, userID, email, now.Add(-s.cfg.RateWindow))
		if err != nil {
			return err
		}
		if recent >= s.cfg.RateLimit {
			return ErrTooManyOTPRequests
		}
		otp = &models.EmailOTP{
			ID:          uuid.NewString(),
			UserID:      userID,
			Email:       email,
			CreatedAt:   now,
			ExpiresAt:   now.Add(s.cfg.TTL),
			MaxAttempts: s.cfg.MaxAttempts,
		}
		if err := otp.SetCode(code); err != nil {
			return err
		}
		return tx.OTPs.CreateOTP(ctx, otp)
	})
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.cfg.TTL.Minutes()))
	if err := s.mailer.Send(ctx, otp.Email, "Your verification code", body); err != nil {
		log := logger.Ctx(ctx)
		log.Error().Err(err).Str("otp_id", otp.ID).Msg("otp mail dispatch failed")
		if delErr := s.store.OTPs.DeleteOTP(context.WithoutCancel(ctx), otp.ID); delErr != nil {
			log.Error().Err(delErr).Str("otp_id", otp.ID).Msg("failed to remove undelivered otp")
		}
		return nil, fmt.Errorf("%w: %v", ErrMailDispatch, err)
	}
	return otp, nil
}

// Verify checks code against the newest unverified OTP for (userID, email).
func (s *OTPService) Verify(ctx context.Context, userID uint, email, code string) (models.OTPOutcome, error) {
	var outcome models.OTPOutcome
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		var err error
		outcome, err = s.verify(ctx, tx, userID, email, code)
		return err
	})
	return outcome, err
}

// verify consumes one attempt inside tx. The attempt is written even when the
// code is rejected, so callers must commit tx on a nil error.
func (s *OTPService) verify(ctx context.Context, tx *repositories.Store, userID uint, email, code string) (models.OTPOutcome, error) {
	otp, err := tx.OTPs.LatestPendingForUpdate(ctx, userID, email)
	if err != nil {
		return "", err
	}
	if otp == nil {
		return "", ErrNoPendingOTP
	}
	outcome := otp.Check(code, s.now())
	if err := tx.OTPs.SaveAttempt(ctx, otp); err != nil {
		return "", err
	}
	l := logger.Ctx(ctx)
	l.Info().Str("otp_id", otp.ID).Int("attempts", otp.Attempts).Str("outcome", string(outcome)).Msg("otp checked")
	return outcome, nil
}

// OutcomeMessage is the text shown to the user for a verification outcome.
func OutcomeMessage(o models.OTPOutcome) string {
	switch o {
	case models.OTPVerified:
		return "Email verified successfully."
	case models.OTPExpired:
		return "This code has expired. Please request a new one."
	case models.OTPMaxAttemptsExceeded:
		return "Too many attempts. Please request a new code."
	default:
		return "Invalid code. Please try again."
	}
}
