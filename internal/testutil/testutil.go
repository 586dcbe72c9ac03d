// Package testutil provides a throwaway database and fixtures for package
// tests.
package testutil

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/repositories"
	"github.com/anonto42/blogsphere/backend/pkg/config"
)

// NewDB opens a private in-memory sqlite database with the schema applied.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := config.OpenSQL("sqlite", "", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repositories.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func NewStore(t testing.TB) *repositories.Store {
	t.Helper()
	return repositories.NewStore(NewDB(t))
}

// Password is the password of every user made by CreateUser.
const Password = "password123"

// CreateUser inserts a user with a profile of the given visibility.
func CreateUser(t testing.TB, store *repositories.Store, username string, visibility models.Visibility) *models.User {
	t.Helper()
	ctx := context.Background()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: passwordHash(t),
	}
	if err := store.Users.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	profile := &models.Profile{UserID: user.ID, Name: username, Visibility: visibility}
	if err := store.Profiles.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("create profile %s: %v", username, err)
	}
	user.Profile = profile
	return user
}

// CreateBlog inserts a published blog by authorID.
func CreateBlog(t testing.TB, store *repositories.Store, authorID uint, title string, views int64) *models.Blog {
	t.Helper()
	now := time.Now()
	blog := &models.Blog{
		ID:          uuid.NewString(),
		AuthorID:    authorID,
		Title:       title,
		Slug:        "blog-" + uuid.NewString(),
		Content:     "content of " + title,
		IsPublished: true,
		Views:       views,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.Blogs.CreateBlog(context.Background(), blog); err != nil {
		t.Fatalf("create blog %s: %v", title, err)
	}
	return blog
}

var codePattern = regexp.MustCompile(`\b\d{4,18}\b`)

// Mail is one message captured by Mailer.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Mailer records mails instead of sending them. Set Err to make Send fail.
type Mailer struct {
	mu   sync.Mutex
	Sent []Mail
	Err  error
}

func (m *Mailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, Mail{To: to, Subject: subject, Body: body})
	return nil
}

// LastCode returns the code in the most recent mail to address.
func (m *Mailer) LastCode(t testing.TB, address string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Sent) - 1; i >= 0; i-- {
		if m.Sent[i].To == address {
			if code := codePattern.FindString(m.Sent[i].Body); code != "" {
				return code
			}
		}
	}
	t.Fatalf("no code mailed to %s", address)
	return ""
}

func (m *Mailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

var (
	hashOnce sync.Once
	hash     string
)

func passwordHash(t testing.TB) string {
	hashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		hash = string(h)
	})
	return hash
}
