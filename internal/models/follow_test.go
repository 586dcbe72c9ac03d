package models

import "testing"

func TestFollowState(t *testing.T) {
	var missing *Follow
	if got := missing.State(); got != FollowStateNone {
		t.Fatalf("nil edge State = %q, want %q", got, FollowStateNone)
	}
	if got := (&Follow{}).State(); got != FollowStatePending {
		t.Fatalf("unapproved State = %q, want %q", got, FollowStatePending)
	}
	if got := (&Follow{IsApproved: true}).State(); got != FollowStateActive {
		t.Fatalf("approved State = %q, want %q", got, FollowStateActive)
	}
}

func TestNotificationRefRoundTrip(t *testing.T) {
	id, ok := FollowRef(42).FollowID()
	if !ok || id != 42 {
		t.Fatalf("FollowID = %d, %v, want 42, true", id, ok)
	}
	if _, ok := BlogRef("b1").FollowID(); ok {
		t.Fatalf("blog ref reported a follow ID")
	}
	if _, ok := NoRef().BlogID(); ok {
		t.Fatalf("empty ref reported a blog ID")
	}
}
