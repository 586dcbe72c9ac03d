package repositories

import (
	"context"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned by every repository when the requested row does not exist.
	ErrNotFound = gorm.ErrRecordNotFound
	// ErrDuplicatedKey is returned when an insert hits a unique index. It
	// requires gorm.Config.TranslateError.
	ErrDuplicatedKey = gorm.ErrDuplicatedKey
)

// Store groups the repositories that share one gorm handle. A Store built
// inside Transaction is bound to that transaction, and is the handle that
// state transitions receive.
type Store struct {
	db *gorm.DB

	Users         UserRepository
	Profiles      ProfileRepository
	Follows       FollowRepository
	Notifications NotificationRepository
	Blogs         BlogRepository
	Taxonomy      TaxonomyRepository
	Comments      CommentRepository
	Likes         LikeRepository
	Emails        EmailRepository
	OTPs          OTPRepository

	// externalBlogs is set when blogs live outside the relational store.
	externalBlogs BlogRepository
}

type StoreOption func(*Store)

// WithBlogRepository replaces the relational blog repository, e.g. with the mongo one.
func WithBlogRepository(repo BlogRepository) StoreOption {
	return func(s *Store) {
		s.externalBlogs = repo
	}
}

// NewStore creates a Store on top of db
func NewStore(db *gorm.DB, opts ...StoreOption) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	s.bind(db)
	return s
}

func (s *Store) bind(db *gorm.DB) {
	s.db = db
	s.Users = NewPostgresUserRepository(db)
	s.Profiles = NewPostgresProfileRepository(db)
	s.Follows = NewPostgresFollowRepository(db)
	s.Notifications = NewPostgresNotificationRepository(db)
	s.Taxonomy = NewPostgresTaxonomyRepository(db)
	s.Comments = NewPostgresCommentRepository(db)
	s.Likes = NewPostgresLikeRepository(db)
	s.Emails = NewPostgresEmailRepository(db)
	s.OTPs = NewPostgresOTPRepository(db)
	if s.externalBlogs != nil {
		s.Blogs = s.externalBlogs
	} else {
		s.Blogs = NewPostgresBlogRepository(db)
	}
}

// DB exposes the underlying handle, e.g. for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn with a Store bound to a single database transaction.
// Returning an error from fn rolls the transaction back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		tx := &Store{externalBlogs: s.externalBlogs}
		tx.bind(gtx)
		return fn(tx)
	})
}

// AutoMigrate creates or updates every table the application uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Follow{},
		&models.Category{},
		&models.Tag{},
		&models.Blog{},
		&models.Comment{},
		&models.Like{},
		&models.UserEmail{},
		&models.EmailOTP{},
		&models.Notification{},
	)
}

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
