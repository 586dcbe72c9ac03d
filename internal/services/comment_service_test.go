package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/testutil"
)

func TestCommentAndReplyNotifications(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	comments := NewCommentService(f.store, NewNotifier(), f.filter)
	author := f.user(t, "author", models.VisibilityPublic)
	first := f.user(t, "first", models.VisibilityPublic)
	second := f.user(t, "second", models.VisibilityPublic)
	blog := testutil.CreateBlog(t, f.store, author.ID, "post", 0)

	top, err := comments.Add(ctx, first.ID, blog.ID, models.CreateCommentRequest{Content: "nice"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := comments.Add(ctx, second.ID, blog.ID, models.CreateCommentRequest{Content: "agreed", ParentID: &top.ID}); err != nil {
		t.Fatalf("Add reply: %v", err)
	}

	if got := f.notifications(t, author.ID, models.NotificationComment); len(got) != 1 {
		t.Fatalf("author has %d comment notifications, want 1", len(got))
	}
	if got := f.notifications(t, author.ID, models.NotificationReply); len(got) != 1 {
		t.Fatalf("author has %d reply notifications, want 1", len(got))
	}
	if got := f.notifications(t, first.ID, models.NotificationReply); len(got) != 1 {
		t.Fatalf("parent author has %d reply notifications, want 1", len(got))
	}

	threads, err := comments.Threads(ctx, Anonymous, blog.ID)
	if err != nil {
		t.Fatalf("Threads: %v", err)
	}
	if len(threads) != 1 || len(threads[0].Replies) != 1 {
		t.Fatalf("Threads = %+v, want one thread with one reply", threads)
	}
}

func TestCommentValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	comments := NewCommentService(f.store, NewNotifier(), f.filter)
	author := f.user(t, "author", models.VisibilityPublic)
	blog := testutil.CreateBlog(t, f.store, author.ID, "post", 0)
	other := testutil.CreateBlog(t, f.store, author.ID, "other", 0)

	if _, err := comments.Add(ctx, author.ID, blog.ID, models.CreateCommentRequest{Content: "   "}); !errors.Is(err, ErrEmptyComment) {
		t.Fatalf("blank comment = %v, want ErrEmptyComment", err)
	}
	parent, err := comments.Add(ctx, author.ID, other.ID, models.CreateCommentRequest{Content: "here"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err = comments.Add(ctx, author.ID, blog.ID, models.CreateCommentRequest{Content: "there", ParentID: &parent.ID})
	if !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("reply across blogs = %v, want ErrCommentNotFound", err)
	}
}
