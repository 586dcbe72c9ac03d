package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryFollowCounts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, _ := m.GetFollowCounts(ctx, 1); ok {
		t.Fatalf("expected a miss on an empty cache")
	}
	want := FollowCounts{Followers: 3, Following: 2}
	if err := m.SetFollowCounts(ctx, 1, want); err != nil {
		t.Fatalf("SetFollowCounts: %v", err)
	}
	got, ok, err := m.GetFollowCounts(ctx, 1)
	if err != nil || !ok || got != want {
		t.Fatalf("GetFollowCounts = %+v, %v, %v, want %+v, true, nil", got, ok, err, want)
	}
	if err := m.InvalidateFollowCounts(ctx, 1, 2); err != nil {
		t.Fatalf("InvalidateFollowCounts: %v", err)
	}
	if _, ok, _ := m.GetFollowCounts(ctx, 1); ok {
		t.Fatalf("expected a miss after invalidation")
	}
}

func TestMemoryMarkViewed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	steps := []struct {
		name    string
		advance time.Duration
		viewer  string
		want    bool
	}{
		{"first view", 0, "u:1", true},
		{"repeat view", time.Hour, "u:1", false},
		{"other viewer", 0, "ip:10.0.0.1", true},
		{"after window", 24 * time.Hour, "u:1", true},
	}
	for _, s := range steps {
		now = now.Add(s.advance)
		got, err := m.MarkViewed(ctx, "blog-1", s.viewer, 24*time.Hour)
		if err != nil {
			t.Fatalf("%s: MarkViewed: %v", s.name, err)
		}
		if got != s.want {
			t.Fatalf("%s: MarkViewed = %v, want %v", s.name, got, s.want)
		}
	}
}
