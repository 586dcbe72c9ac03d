package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/testutil"
)

func TestLikeToggleNotifiesOnEachLike(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	author := f.user(t, "author", models.VisibilityPublic)
	reader := f.user(t, "reader", models.VisibilityPublic)
	blog := testutil.CreateBlog(t, f.store, author.ID, "Go tips", 0)

	steps := []LikeResult{
		{Liked: true, LikeCount: 1},
		{Liked: false, LikeCount: 0},
		{Liked: true, LikeCount: 1},
	}
	for i, want := range steps {
		got, err := f.likes.Toggle(ctx, reader.ID, blog.ID)
		if err != nil {
			t.Fatalf("Toggle %d: %v", i+1, err)
		}
		if got != want {
			t.Fatalf("Toggle %d = %+v, want %+v", i+1, got, want)
		}
	}
	if got := f.notifications(t, author.ID, models.NotificationLike); len(got) != 2 {
		t.Fatalf("author has %d like notifications, want 2", len(got))
	}
}

func TestLikeOwnBlogIsSilent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	author := f.user(t, "author", models.VisibilityPublic)
	blog := testutil.CreateBlog(t, f.store, author.ID, "Go tips", 0)

	if _, err := f.likes.Toggle(ctx, author.ID, blog.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if got := f.notifications(t, author.ID, models.NotificationLike); len(got) != 0 {
		t.Fatalf("self-like created %d notifications", len(got))
	}
}

func TestLikeMissingBlog(t *testing.T) {
	f := newFixture(t)
	reader := f.user(t, "reader", models.VisibilityPublic)

	if _, err := f.likes.Toggle(context.Background(), reader.ID, "no-such-blog"); !errors.Is(err, ErrBlogNotFound) {
		t.Fatalf("Toggle = %v, want ErrBlogNotFound", err)
	}
}
