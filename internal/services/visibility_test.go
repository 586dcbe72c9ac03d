package services

import (
	"context"
	"testing"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/testutil"
)

func TestDecide(t *testing.T) {
	const owner, viewer uint = 1, 2

	tests := []struct {
		name       string
		viewer     uint
		visibility models.Visibility
		active     bool
		want       Access
	}{
		{"public to anonymous", Anonymous, models.VisibilityPublic, false, Visible},
		{"public to stranger", viewer, models.VisibilityPublic, false, Visible},
		{"private to owner", owner, models.VisibilityPrivate, false, Visible},
		{"private to follower", viewer, models.VisibilityPrivate, true, HiddenPrivate},
		{"private to anonymous", Anonymous, models.VisibilityPrivate, false, HiddenPrivate},
		{"followers to owner", owner, models.VisibilityFollowers, false, Visible},
		{"followers to active follower", viewer, models.VisibilityFollowers, true, Visible},
		{"followers to stranger", viewer, models.VisibilityFollowers, false, HiddenFollowersOnly},
		{"followers to anonymous", Anonymous, models.VisibilityFollowers, false, HiddenFollowersOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.viewer, owner, tt.visibility, tt.active); got != tt.want {
				t.Fatalf("Decide = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFollowersOnlyVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner", models.VisibilityFollowers)
	fan := f.user(t, "fan", models.VisibilityPublic)
	stranger := f.user(t, "stranger", models.VisibilityPublic)
	testutil.CreateBlog(t, f.store, owner.ID, "members only", 5)

	check := func(name string, viewer uint, want Access) {
		t.Helper()
		got, err := f.filter.Resolve(ctx, viewer, owner.ID)
		if err != nil {
			t.Fatalf("%s: Resolve: %v", name, err)
		}
		if got != want {
			t.Fatalf("%s: Resolve = %s, want %s", name, got, want)
		}
	}

	check("stranger", stranger.ID, HiddenFollowersOnly)
	check("self", owner.ID, Visible)

	if _, err := f.follows.Toggle(ctx, fan.ID, owner.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	check("pending follower", fan.ID, HiddenFollowersOnly)

	if _, err := f.follows.Approve(ctx, owner.ID, fan.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	check("active follower", fan.ID, Visible)

	blogs, err := f.blogs.List(ctx, stranger.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(blogs) != 0 {
		t.Fatalf("stranger sees %d blogs, want 0", len(blogs))
	}
	blogs, err = f.blogs.List(ctx, fan.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(blogs) != 1 {
		t.Fatalf("follower sees %d blogs, want 1", len(blogs))
	}
}
