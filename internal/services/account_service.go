package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/blogsphere/backend/internal/cache"
	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/repositories"
	"github.com/anonto42/blogsphere/backend/pkg/logger"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"
)

// DeleteConfirmation must be typed by the user to delete the account.
const DeleteConfirmation = "DELETE"

// ErrInvalidToken is returned by Authenticate for any token it cannot accept.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenVerifier checks firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type AccountConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// AccountService owns credentials: signup, login, tokens, password changes
// and account deletion.
type AccountService struct {
	store    *repositories.Store
	otp      *OTPService
	cache    cache.Cache
	firebase TokenVerifier
	cfg      AccountConfig
	now      func() time.Time
}

// NewAccountService creates a new AccountService. firebase may be nil, in
// which case firebase login is unavailable.
func NewAccountService(store *repositories.Store, otp *OTPService, c cache.Cache, firebase TokenVerifier, cfg AccountConfig) *AccountService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 72 * time.Hour
	}
	return &AccountService{store: store, otp: otp, cache: c, firebase: firebase, cfg: cfg, now: time.Now}
}

// Signup creates the user and its profile in one transaction.
func (s *AccountService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, string, error) {
	if req.Password1 != req.Password2 {
		return nil, "", ErrPasswordMismatch
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hash),
	}
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		return s.createAccount(ctx, tx, user)
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	l := logger.Ctx(ctx)
	l.Info().Uint(logger.FieldUserID, user.ID).Msg("account created")
	return user, token, nil
}

func (s *AccountService) createAccount(ctx context.Context, tx *repositories.Store, user *models.User) error {
	if _, err := tx.Users.GetUserByUsername(ctx, user.Username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	if err := emailAvailable(ctx, tx, user.Email); err != nil {
		return err
	}

	now := s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	if err := tx.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicatedKey) {
			return ErrUsernameTaken
		}
		return err
	}
	profile := &models.Profile{
		UserID:     user.ID,
		Visibility: models.VisibilityPublic,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.Profiles.CreateProfile(ctx, profile); err != nil {
		return err
	}
	user.Profile = profile
	return nil
}

// Login accepts a username or an email address.
func (s *AccountService) Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error) {
	user, err := s.store.Users.GetUserByLogin(ctx, strings.TrimSpace(req.Login))
	if err != nil {
		return nil, "", notFoundOr(err, ErrInvalidCredentials)
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// FirebaseLogin exchanges a firebase ID token for a local token. The user is
// matched by firebase UID, then by email; otherwise a new account is created.
func (s *AccountService) FirebaseLogin(ctx context.Context, idToken string) (*models.User, string, error) {
	if s.firebase == nil {
		return nil, "", &Error{Kind: KindValidation, Msg: "Firebase login is not enabled."}
	}
	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, "", ErrInvalidToken
	}
	email, _ := token.Claims["email"].(string)
	email = strings.ToLower(email)

	var user *models.User
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		var err error
		user, err = tx.Users.GetUserByFirebaseUID(ctx, token.UID)
		if err == nil || !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		if email == "" {
			return &Error{Kind: KindValidation, Msg: "Firebase account has no email address."}
		}
		user, err = tx.Users.GetUserByEmail(ctx, email)
		if err == nil {
			return tx.Users.LinkFirebaseUID(ctx, user.ID, token.UID)
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		username, err := s.freeUsername(ctx, tx, email)
		if err != nil {
			return err
		}
		uid := token.UID
		user = &models.User{Username: username, Email: email, FirebaseUID: &uid}
		if err := s.createAccount(ctx, tx, user); err != nil {
			return err
		}
		if name, ok := token.Claims["name"].(string); ok && name != "" {
			user.Profile.Name = name
			return tx.Profiles.UpdateProfile(ctx, user.Profile)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	local, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, local, nil
}

// freeUsername derives a handle from the local part of email.
func (s *AccountService) freeUsername(ctx context.Context, tx *repositories.Store, email string) (string, error) {
	local, _, _ := strings.Cut(email, "@")
	base := strings.ReplaceAll(slug.Make(local), "-", "")
	if len(base) < 3 {
		base = "user" + base
	}
	candidate := base
	for {
		_, err := tx.Users.GetUserByUsername(ctx, candidate)
		if errors.Is(err, repositories.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = base + uuid.NewString()[:6]
	}
}

// IssueToken signs an HS256 access token for user.
func (s *AccountService) IssueToken(user *models.User) (string, error) {
	now := s.now()
	claims := &models.JwtCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate accepts a local access token, or a firebase ID token of a
// known user when firebase is configured.
func (s *AccountService) Authenticate(ctx context.Context, bearer string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(bearer, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err == nil && token.Valid {
		return claims, nil
	}
	if s.firebase == nil {
		return nil, ErrInvalidToken
	}

	idToken, err := s.firebase.VerifyIDToken(ctx, bearer)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.store.Users.GetUserByFirebaseUID(ctx, idToken.UID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return &models.JwtCustomClaims{UserID: user.ID, Username: user.Username}, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID uint, req models.ChangePasswordRequest) error {
	if req.NewPassword1 != req.NewPassword2 {
		return ErrPasswordMismatch
	}
	user, err := s.store.Users.GetUserByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, ErrUserNotFound)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)) != nil {
		return ErrWrongPassword
	}
	return s.setPassword(ctx, s.store, userID, req.NewPassword1)
}

func (s *AccountService) setPassword(ctx context.Context, tx *repositories.Store, userID uint, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return tx.Users.UpdatePassword(ctx, userID, string(hash))
}

// RequestPasswordReset mails a reset code to username's primary address. It
// returns the address so the caller can tell the user where to look.
func (s *AccountService) RequestPasswordReset(ctx context.Context, username string) (string, error) {
	user, err := s.store.Users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", notFoundOr(err, ErrUserNotFound)
	}
	if _, err := s.otp.Issue(ctx, user.ID, user.Email); err != nil {
		return "", err
	}
	return user.Email, nil
}

// ConfirmPasswordReset checks the code against the newest reset OTP and sets
// the new password in the same transaction. A rejected code still spends one
// attempt.
func (s *AccountService) ConfirmPasswordReset(ctx context.Context, req models.PasswordResetConfirmRequest) (models.OTPOutcome, error) {
	if req.NewPassword1 != req.NewPassword2 {
		return "", ErrPasswordMismatch
	}
	user, err := s.store.Users.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return "", notFoundOr(err, ErrUserNotFound)
	}

	var outcome models.OTPOutcome
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		var err error
		outcome, err = s.otp.verify(ctx, tx, user.ID, user.Email, req.Code)
		if err != nil || outcome != models.OTPVerified {
			return err
		}
		return s.setPassword(ctx, tx, user.ID, req.NewPassword1)
	})
	if err != nil {
		return "", err
	}
	if outcome == models.OTPVerified {
		l := logger.Ctx(ctx)
		l.Info().Uint(logger.FieldUserID, user.ID).Msg("password reset")
	}
	return outcome, nil
}

// Delete removes the account and everything it owns. The caller must supply
// the password and the literal confirmation word.
func (s *AccountService) Delete(ctx context.Context, userID uint, req models.DeleteAccountRequest) error {
	if req.Confirmation != DeleteConfirmation {
		return ErrBadConfirmation
	}
	user, err := s.store.Users.GetUserByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, ErrUserNotFound)
	}
	if user.Password != "" && bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return ErrWrongPassword
	}

	var touched []uint
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Users.LockUser(ctx, userID); err != nil {
			return notFoundOr(err, ErrUserNotFound)
		}
		if err := tx.Likes.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Comments.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		blogIDs, err := tx.Blogs.DeleteBlogsByAuthor(ctx, userID)
		if err != nil {
			return err
		}
		if err := tx.Likes.DeleteByBlogIDs(ctx, blogIDs); err != nil {
			return err
		}
		if err := tx.Comments.DeleteByBlogIDs(ctx, blogIDs); err != nil {
			return err
		}
		if touched, err = tx.Follows.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Notifications.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.OTPs.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Emails.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Profiles.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return tx.Users.DeleteUser(ctx, userID)
	})
	if err != nil {
		return err
	}

	l := logger.Ctx(ctx)
	if err := s.cache.InvalidateFollowCounts(ctx, append(touched, userID)...); err != nil {
		l.Warn().Err(err).Msg("follow count cache invalidation failed")
	}
	l.Info().Uint(logger.FieldUserID, userID).Msg("account deleted")
	return nil
}
