package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/blogsphere/backend/internal/models"
)

func TestNotificationListAndRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	notifications := NewNotificationService(f.store)
	owner := f.user(t, "owner", models.VisibilityPublic)
	for _, name := range []string{"a1", "a2", "a3"} {
		fan := f.user(t, name, models.VisibilityPublic)
		if _, err := f.follows.Toggle(ctx, fan.ID, owner.ID); err != nil {
			t.Fatalf("Toggle: %v", err)
		}
	}

	page, err := notifications.List(ctx, owner.ID, 1, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Items) != 2 || page.Meta.Total != 3 || page.Meta.TotalPages != 2 || page.Unread != 3 {
		t.Fatalf("page = %+v", page)
	}
	if page.Items[0].Sender == nil {
		t.Fatalf("sender not resolved")
	}

	if err := notifications.MarkRead(ctx, owner.ID, page.Items[0].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if n, _ := notifications.UnreadCount(ctx, owner.ID); n != 2 {
		t.Fatalf("UnreadCount = %d, want 2", n)
	}
	if err := notifications.MarkRead(ctx, owner.ID+100, page.Items[1].ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("MarkRead of someone else's notification = %v, want ErrNotificationNotFound", err)
	}
	if err := notifications.MarkAllRead(ctx, owner.ID); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if n, _ := notifications.UnreadCount(ctx, owner.ID); n != 0 {
		t.Fatalf("UnreadCount = %d, want 0", n)
	}

	grouped, err := notifications.Grouped(ctx, owner.ID)
	if err != nil {
		t.Fatalf("Grouped: %v", err)
	}
	if len(grouped.Today) != 3 {
		t.Fatalf("today = %d, want 3", len(grouped.Today))
	}

	if err := notifications.Clear(ctx, owner.ID); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	page, err = notifications.List(ctx, owner.ID, 1, 20)
	if err != nil || len(page.Items) != 0 {
		t.Fatalf("List after Clear = %+v, %v", page, err)
	}
}
