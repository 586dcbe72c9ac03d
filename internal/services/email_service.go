package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/repositories"
	"github.com/anonto42/blogsphere/backend/pkg/logger"
)

// EmailSettings lists the primary address and the additional ones.
type EmailSettings struct {
	Primary    string             `json:"primary"`
	Additional []models.UserEmail `json:"additional"`
}

// EmailService manages the additional addresses of an account and their
// verification codes.
type EmailService struct {
	store *repositories.Store
	otp   *OTPService
	now   func() time.Time
}

func NewEmailService(store *repositories.Store, otp *OTPService) *EmailService {
	return &EmailService{store: store, otp: otp, now: time.Now}
}

func (s *EmailService) List(ctx context.Context, userID uint) (*EmailSettings, error) {
	user, err := s.store.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}
	emails, err := s.store.Emails.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &EmailSettings{Primary: user.Email, Additional: emails}, nil
}

// Add attaches an unverified address and sends it a code. The address is
// removed again if the code cannot be issued.
func (s *EmailService) Add(ctx context.Context, userID uint, address string) (*models.UserEmail, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	email := &models.UserEmail{UserID: userID, Email: address, CreatedAt: s.now()}
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := emailAvailable(ctx, tx, address); err != nil {
			return err
		}
		if err := tx.Emails.CreateEmail(ctx, email); err != nil {
			if errors.Is(err, repositories.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.otp.Issue(ctx, userID, address); err != nil {
		if delErr := s.store.Emails.DeleteEmail(context.WithoutCancel(ctx), userID, email.ID); delErr != nil {
			l := logger.Ctx(ctx)
			l.Error().Err(delErr).Uint("email_id", email.ID).Msg("failed to remove unverifiable email")
		}
		return nil, err
	}
	return email, nil
}

// Delete removes an additional address. The current primary address stays.
func (s *EmailService) Delete(ctx context.Context, userID, emailID uint) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		user, err := tx.Users.LockUser(ctx, userID)
		if err != nil {
			return notFoundOr(err, ErrUserNotFound)
		}
		email, err := tx.Emails.GetEmail(ctx, userID, emailID)
		if err != nil {
			return notFoundOr(err, ErrEmailNotFound)
		}
		if email.Email == user.Email {
			return ErrPrimaryEmail
		}
		return notFoundOr(tx.Emails.DeleteEmail(ctx, userID, emailID), ErrEmailNotFound)
	})
}

// SetPrimary makes a verified additional address the primary one. The old
// primary address is kept as a verified additional address.
func (s *EmailService) SetPrimary(ctx context.Context, userID, emailID uint) (string, error) {
	var address string
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		user, err := tx.Users.LockUser(ctx, userID)
		if err != nil {
			return notFoundOr(err, ErrUserNotFound)
		}
		email, err := tx.Emails.GetEmail(ctx, userID, emailID)
		if err != nil {
			return notFoundOr(err, ErrEmailNotFound)
		}
		if !email.Verified {
			return ErrUnverifiedEmail
		}
		address = email.Email
		if address == user.Email {
			return nil
		}
		if err := tx.Emails.MarkVerified(ctx, userID, user.Email); err != nil {
			return err
		}
		return tx.Users.UpdateEmail(ctx, userID, address)
	})
	return address, err
}

// SendOTP issues a code for one of the user's addresses: the one with
// emailID when given, else address, else the primary address.
func (s *EmailService) SendOTP(ctx context.Context, userID uint, emailID *uint, address string) (string, error) {
	user, err := s.store.Users.GetUserByID(ctx, userID)
	if err != nil {
		return "", notFoundOr(err, ErrUserNotFound)
	}

	target := strings.ToLower(strings.TrimSpace(address))
	switch {
	case emailID != nil:
		email, err := s.store.Emails.GetEmail(ctx, userID, *emailID)
		if err != nil {
			return "", notFoundOr(err, ErrEmailNotFound)
		}
		if email.Verified {
			return "", ErrEmailAlreadyVerified
		}
		target = email.Email
	case target == "":
		target = user.Email
	case target != user.Email:
		email, err := s.store.Emails.GetByAddress(ctx, target)
		if err != nil {
			return "", err
		}
		if email == nil || email.UserID != userID {
			return "", ErrEmailNotFound
		}
	}

	if _, err := s.otp.Issue(ctx, userID, target); err != nil {
		return "", err
	}
	return target, nil
}

// Confirm verifies code for address and marks the address verified on
// success. The attempt is recorded whatever the outcome.
func (s *EmailService) Confirm(ctx context.Context, userID uint, address, code string) (models.OTPOutcome, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	var outcome models.OTPOutcome
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		user, err := tx.Users.GetUserByID(ctx, userID)
		if err != nil {
			return notFoundOr(err, ErrUserNotFound)
		}
		outcome, err = s.otp.verify(ctx, tx, userID, address, code)
		if err != nil || outcome != models.OTPVerified || address == user.Email {
			return err
		}
		return tx.Emails.MarkVerified(ctx, userID, address)
	})
	return outcome, err
}

// emailAvailable reports ErrEmailTaken when address is anyone's primary or
// additional email.
func emailAvailable(ctx context.Context, tx *repositories.Store, address string) error {
	if _, err := tx.Users.GetUserByEmail(ctx, address); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	existing, err := tx.Emails.GetByAddress(ctx, address)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}
	return nil
}
