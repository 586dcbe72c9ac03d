package services

import (
	"context"
	"testing"

	"github.com/anonto42/blogsphere/backend/internal/cache"
	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/repositories"
	"github.com/anonto42/blogsphere/backend/internal/testutil"
)

type fixture struct {
	store   *repositories.Store
	cache   *cache.Memory
	mailer  *testutil.Mailer
	otp     *OTPService
	follows *FollowService
	blogs   *BlogService
	likes   *LikeService
	filter  *VisibilityFilter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore(t)
	c := cache.NewMemory()
	mailer := &testutil.Mailer{}
	notifier := NewNotifier()
	filter := NewVisibilityFilter(store)
	return &fixture{
		store:   store,
		cache:   c,
		mailer:  mailer,
		otp:     NewOTPService(store, mailer, OTPConfig{}),
		follows: NewFollowService(store, notifier, c),
		blogs:   NewBlogService(store, notifier, filter, c),
		likes:   NewLikeService(store, notifier),
		filter:  filter,
	}
}

func (f *fixture) user(t *testing.T, username string, visibility models.Visibility) *models.User {
	t.Helper()
	return testutil.CreateUser(t, f.store, username, visibility)
}

// notifications returns recipientID's notifications of type kind.
func (f *fixture) notifications(t *testing.T, recipientID uint, kind models.NotificationType) []models.Notification {
	t.Helper()
	var out []models.Notification
	err := f.store.DB().WithContext(context.Background()).
		Where("recipient_id = ? AND type = ?", recipientID, kind).
		Order("id").
		Find(&out).Error
	if err != nil {
		t.Fatalf("load notifications: %v", err)
	}
	return out
}

func (f *fixture) edgeCount(t *testing.T, followerID, followingID uint) int64 {
	t.Helper()
	var n int64
	err := f.store.DB().Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&n).Error
	if err != nil {
		t.Fatalf("count follows: %v", err)
	}
	return n
}
