package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/blogsphere/backend/internal/models"
)

func TestFollowPublicTarget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice", models.VisibilityPublic)
	bob := f.user(t, "bob", models.VisibilityPublic)

	status, err := f.follows.Toggle(ctx, alice.ID, bob.ID)
	if err != nil || status != StatusFollowed {
		t.Fatalf("Toggle = %q, %v, want %q", status, err, StatusFollowed)
	}
	if got := f.notifications(t, bob.ID, models.NotificationFollow); len(got) != 1 {
		t.Fatalf("bob has %d follow notifications, want 1", len(got))
	}
	counts, err := f.follows.Counts(ctx, bob.ID)
	if err != nil || counts.Followers != 1 {
		t.Fatalf("Counts = %+v, %v, want 1 follower", counts, err)
	}

	status, err = f.follows.Toggle(ctx, alice.ID, bob.ID)
	if err != nil || status != StatusUnfollowed {
		t.Fatalf("second Toggle = %q, %v, want %q", status, err, StatusUnfollowed)
	}
	if n := f.edgeCount(t, alice.ID, bob.ID); n != 0 {
		t.Fatalf("edge count = %d after unfollow", n)
	}
	counts, err = f.follows.Counts(ctx, bob.ID)
	if err != nil || counts.Followers != 0 {
		t.Fatalf("Counts after unfollow = %+v, %v, want 0 followers", counts, err)
	}
}

func TestFollowPendingToggleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice", models.VisibilityPublic)
	carol := f.user(t, "carol", models.VisibilityPrivate)

	for i := 0; i < 3; i++ {
		status, err := f.follows.Toggle(ctx, alice.ID, carol.ID)
		if err != nil || status != StatusRequested {
			t.Fatalf("Toggle %d = %q, %v, want %q", i+1, status, err, StatusRequested)
		}
	}
	if n := f.edgeCount(t, alice.ID, carol.ID); n != 1 {
		t.Fatalf("edge count = %d, want 1", n)
	}
	if got := f.notifications(t, carol.ID, models.NotificationFollowRequest); len(got) != 1 {
		t.Fatalf("carol has %d follow requests, want 1", len(got))
	}
	state, err := f.follows.State(ctx, alice.ID, carol.ID)
	if err != nil || state != models.FollowStatePending {
		t.Fatalf("State = %q, %v, want %q", state, err, models.FollowStatePending)
	}
}

func TestFollowSelf(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice", models.VisibilityPublic)

	if _, err := f.follows.Toggle(context.Background(), alice.ID, alice.ID); !errors.Is(err, ErrSelfFollow) {
		t.Fatalf("Toggle self = %v, want ErrSelfFollow", err)
	}
}

func TestFollowApprove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice", models.VisibilityPublic)
	carol := f.user(t, "carol", models.VisibilityFollowers)
	mallory := f.user(t, "mallory", models.VisibilityPublic)

	if _, err := f.follows.Toggle(ctx, alice.ID, carol.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	requests := f.notifications(t, carol.ID, models.NotificationFollowRequest)
	if len(requests) != 1 {
		t.Fatalf("carol has %d follow requests, want 1", len(requests))
	}

	// The request is addressed to carol, not mallory.
	_, err := f.follows.HandleRequest(ctx, mallory.ID, requests[0].ID, models.FollowRequestAccept)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("HandleRequest by a stranger = %v, want a forbidden error", err)
	}

	follow, err := f.follows.HandleRequest(ctx, carol.ID, requests[0].ID, models.FollowRequestAccept)
	if err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if follow.State() != models.FollowStateActive {
		t.Fatalf("edge state = %q, want active", follow.State())
	}
	accepted := f.notifications(t, alice.ID, models.NotificationFollowRequest)
	if len(accepted) != 1 {
		t.Fatalf("alice has %d acceptance notifications, want 1", len(accepted))
	}

	_, err = f.follows.HandleRequest(ctx, carol.ID, requests[0].ID, models.FollowRequestAccept)
	if !errors.Is(err, ErrStateConflict) {
		t.Fatalf("second approval = %v, want a state conflict", err)
	}
	if _, err := f.follows.Approve(ctx, carol.ID, alice.ID); !errors.Is(err, ErrAlreadyApproved) {
		t.Fatalf("Approve of an active edge = %v, want ErrAlreadyApproved", err)
	}
	if got := f.notifications(t, alice.ID, models.NotificationFollowRequest); len(got) != 1 {
		t.Fatalf("re-approval created notifications: alice has %d", len(got))
	}
}

func TestFollowReject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice", models.VisibilityPublic)
	carol := f.user(t, "carol", models.VisibilityPrivate)

	if _, err := f.follows.Request(ctx, alice.ID, carol.ID); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if _, err := f.follows.Request(ctx, alice.ID, carol.ID); !errors.Is(err, ErrAlreadyRequested) {
		t.Fatalf("repeated Request = %v, want ErrAlreadyRequested", err)
	}
	if err := f.follows.Reject(ctx, alice.ID, carol.ID); !errors.Is(err, ErrFollowRequestNotFound) {
		t.Fatalf("Reject by the requester = %v, want ErrFollowRequestNotFound", err)
	}
	if err := f.follows.Reject(ctx, carol.ID, alice.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if n := f.edgeCount(t, alice.ID, carol.ID); n != 0 {
		t.Fatalf("edge count = %d after rejection", n)
	}
	rejected := f.notifications(t, alice.ID, models.NotificationFollowRequest)
	if len(rejected) != 1 || rejected[0].Ref.Kind != models.RefNone {
		t.Fatalf("alice rejection notifications = %+v, want one without a reference", rejected)
	}
}

func TestUnfollowCancelsPendingRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice", models.VisibilityPublic)
	carol := f.user(t, "carol", models.VisibilityPrivate)

	if _, err := f.follows.Toggle(ctx, alice.ID, carol.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if err := f.follows.Unfollow(ctx, alice.ID, carol.ID); err != nil {
		t.Fatalf("Unfollow: %v", err)
	}
	if err := f.follows.Unfollow(ctx, alice.ID, carol.ID); !errors.Is(err, ErrNotFollowing) {
		t.Fatalf("second Unfollow = %v, want ErrNotFollowing", err)
	}
}
