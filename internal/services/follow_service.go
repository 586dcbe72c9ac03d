package services

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/blogsphere/backend/internal/cache"
	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/repositories"
	"github.com/anonto42/blogsphere/backend/pkg/logger"
)

// FollowStatus is what a toggle reports back to the client.
type FollowStatus string

const (
	StatusFollowed   FollowStatus = "followed"
	StatusUnfollowed FollowStatus = "unfollowed"
	StatusRequested  FollowStatus = "requested"
)

// FollowService runs the follow state machine:
//
//	NONE    --follow--> PENDING (target not public) | ACTIVE (target public)
//	PENDING --approve-> ACTIVE
//	PENDING --reject--> NONE
//	ACTIVE  --unfollow> NONE
//
// Each transition runs in its own transaction with the edge row locked.
type FollowService struct {
	store    *repositories.Store
	notifier *Notifier
	cache    cache.Cache
	now      func() time.Time
}

func NewFollowService(store *repositories.Store, notifier *Notifier, c cache.Cache) *FollowService {
	return &FollowService{store: store, notifier: notifier, cache: c, now: time.Now}
}

// Toggle follows targetID, or unfollows it when the edge is active. A pending
// request is left alone and reported as requested.
func (s *FollowService) Toggle(ctx context.Context, actorID, targetID uint) (FollowStatus, error) {
	var status FollowStatus
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		var err error
		status, err = s.toggle(ctx, tx, actorID, targetID)
		return err
	})
	if err != nil {
		return "", err
	}
	if status != StatusRequested {
		s.invalidate(ctx, actorID, targetID)
	}
	return status, nil
}

func (s *FollowService) toggle(ctx context.Context, tx *repositories.Store, actorID, targetID uint) (FollowStatus, error) {
	if actorID == targetID {
		return "", ErrSelfFollow
	}
	edge, err := tx.Follows.GetFollowForUpdate(ctx, actorID, targetID)
	if err != nil {
		return "", err
	}
	switch edge.State() {
	case models.FollowStateActive:
		if err := tx.Follows.DeleteFollow(ctx, edge.ID); err != nil {
			return "", err
		}
		return StatusUnfollowed, nil
	case models.FollowStatePending:
		return StatusRequested, nil
	}
	follow, err := s.follow(ctx, tx, actorID, targetID)
	if err != nil {
		return "", err
	}
	return statusOf(follow), nil
}

// Request is the explicit "send follow request" action. Unlike Toggle it
// never unfollows; an existing edge is reported as a conflict.
func (s *FollowService) Request(ctx context.Context, actorID, targetID uint) (FollowStatus, error) {
	var status FollowStatus
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if actorID == targetID {
			return ErrSelfFollow
		}
		edge, err := tx.Follows.GetFollowForUpdate(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		switch edge.State() {
		case models.FollowStateActive:
			return ErrAlreadyFollowing
		case models.FollowStatePending:
			return ErrAlreadyRequested
		}
		follow, err := s.follow(ctx, tx, actorID, targetID)
		if err != nil {
			return err
		}
		status = statusOf(follow)
		return nil
	})
	if err != nil {
		return "", err
	}
	s.invalidate(ctx, actorID, targetID)
	return status, nil
}

// follow creates the edge from NONE. When a concurrent request inserted the
// same pair first, the stored edge is returned and nobody is notified twice.
func (s *FollowService) follow(ctx context.Context, tx *repositories.Store, actorID, targetID uint) (*models.Follow, error) {
	actor, err := tx.Users.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}
	target, err := tx.Users.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}

	visibility := models.VisibilityPublic
	if target.Profile != nil {
		visibility = target.Profile.Visibility
	}

	follow := &models.Follow{
		FollowerID:  actorID,
		FollowingID: targetID,
		IsApproved:  !visibility.RequiresApproval(),
		CreatedAt:   s.now(),
	}
	inserted, err := tx.Follows.InsertFollow(ctx, follow)
	if err != nil {
		return nil, err
	}
	if !inserted {
		existing, err := tx.Follows.GetFollow(ctx, actorID, targetID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("follow edge %d->%d vanished after conflicting insert", actorID, targetID)
		}
		return existing, nil
	}

	if follow.IsApproved {
		err = s.notifier.Followed(ctx, tx, actor, follow)
	} else {
		err = s.notifier.FollowRequested(ctx, tx, actor, follow)
	}
	if err != nil {
		return nil, err
	}
	return follow, nil
}

func statusOf(f *models.Follow) FollowStatus {
	if f.IsApproved {
		return StatusFollowed
	}
	return StatusRequested
}

// Unfollow removes an active edge or withdraws a pending request.
func (s *FollowService) Unfollow(ctx context.Context, actorID, targetID uint) error {
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		edge, err := tx.Follows.GetFollowForUpdate(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		if edge == nil {
			return ErrNotFollowing
		}
		return tx.Follows.DeleteFollow(ctx, edge.ID)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, actorID, targetID)
	return nil
}

// Approve accepts followerID's pending request to actorID.
func (s *FollowService) Approve(ctx context.Context, actorID, followerID uint) (*models.Follow, error) {
	var follow *models.Follow
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		edge, err := tx.Follows.GetFollowForUpdate(ctx, followerID, actorID)
		if err != nil {
			return err
		}
		if edge == nil {
			return ErrFollowRequestNotFound
		}
		follow = edge
		return s.approve(ctx, tx, actorID, edge)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, actorID, followerID)
	return follow, nil
}

// Reject turns down followerID's pending request to actorID.
func (s *FollowService) Reject(ctx context.Context, actorID, followerID uint) error {
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		edge, err := tx.Follows.GetFollowForUpdate(ctx, followerID, actorID)
		if err != nil {
			return err
		}
		if edge == nil {
			return ErrFollowRequestNotFound
		}
		return s.reject(ctx, tx, actorID, edge)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, actorID, followerID)
	return nil
}

// HandleRequest accepts or rejects the follow request behind a notification.
// Only the recipient of that notification, who must also be the target of
// the edge, may act on it.
func (s *FollowService) HandleRequest(ctx context.Context, actorID, notificationID uint, action models.FollowRequestAction) (*models.Follow, error) {
	if action != models.FollowRequestAccept && action != models.FollowRequestReject {
		return nil, ErrInvalidAction
	}
	var follow *models.Follow
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		notification, err := tx.Notifications.GetByIDForUpdate(ctx, notificationID)
		if err != nil {
			return notFoundOr(err, ErrNotificationNotFound)
		}
		if notification.RecipientID != actorID {
			return ErrNotRequestRecipient
		}
		if notification.Type != models.NotificationFollowRequest {
			return ErrNotFollowRequest
		}
		followID, ok := notification.Ref.FollowID()
		if !ok {
			return ErrFollowRequestNotFound
		}
		edge, err := tx.Follows.GetFollowByIDForUpdate(ctx, followID)
		if err != nil {
			return notFoundOr(err, ErrFollowRequestNotFound)
		}
		follow = edge
		if action == models.FollowRequestAccept {
			return s.approve(ctx, tx, actorID, edge)
		}
		return s.reject(ctx, tx, actorID, edge)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, follow.FollowerID, follow.FollowingID)
	return follow, nil
}

func (s *FollowService) approve(ctx context.Context, tx *repositories.Store, actorID uint, edge *models.Follow) error {
	if edge.FollowingID != actorID {
		return ErrNotRequestRecipient
	}
	if edge.IsApproved {
		return ErrAlreadyApproved
	}
	if err := tx.Follows.ApproveFollow(ctx, edge.ID); err != nil {
		return err
	}
	edge.IsApproved = true

	target, follower, origin, err := s.requestParties(ctx, tx, edge)
	if err != nil {
		return err
	}
	l := logger.Ctx(ctx)
	l.Info().Uint("follow_id", edge.ID).Uint(logger.FieldUserID, actorID).Msg("follow request approved")
	return s.notifier.FollowAccepted(ctx, tx, target, follower, edge, origin)
}

func (s *FollowService) reject(ctx context.Context, tx *repositories.Store, actorID uint, edge *models.Follow) error {
	if edge.FollowingID != actorID {
		return ErrNotRequestRecipient
	}
	if edge.IsApproved {
		return ErrAlreadyApproved
	}
	target, follower, origin, err := s.requestParties(ctx, tx, edge)
	if err != nil {
		return err
	}
	if err := tx.Follows.DeleteFollow(ctx, edge.ID); err != nil {
		return err
	}
	l := logger.Ctx(ctx)
	l.Info().Uint("follow_id", edge.ID).Uint(logger.FieldUserID, actorID).Msg("follow request rejected")
	return s.notifier.FollowRejected(ctx, tx, target, follower, origin)
}

func (s *FollowService) requestParties(ctx context.Context, tx *repositories.Store, edge *models.Follow) (target, follower *models.User, origin *models.Notification, err error) {
	if target, err = tx.Users.GetUserByID(ctx, edge.FollowingID); err != nil {
		return nil, nil, nil, notFoundOr(err, ErrUserNotFound)
	}
	if follower, err = tx.Users.GetUserByID(ctx, edge.FollowerID); err != nil {
		return nil, nil, nil, notFoundOr(err, ErrUserNotFound)
	}
	if origin, err = tx.Notifications.FindFollowRequest(ctx, edge.FollowingID, edge.ID); err != nil {
		return nil, nil, nil, err
	}
	return target, follower, origin, nil
}

// State reports the relationship from followerID to followingID.
func (s *FollowService) State(ctx context.Context, followerID, followingID uint) (models.FollowState, error) {
	if followerID == Anonymous || followerID == followingID {
		return models.FollowStateNone, nil
	}
	edge, err := s.store.Follows.GetFollow(ctx, followerID, followingID)
	if err != nil {
		return "", err
	}
	return edge.State(), nil
}

// UserID resolves a username for the routes that address users by handle.
func (s *FollowService) UserID(ctx context.Context, username string) (uint, error) {
	user, err := s.store.Users.GetUserByUsername(ctx, username)
	if err != nil {
		return 0, notFoundOr(err, ErrUserNotFound)
	}
	return user.ID, nil
}

// PendingRequests lists requests waiting for userID's decision.
func (s *FollowService) PendingRequests(ctx context.Context, userID uint) ([]models.Follow, error) {
	return s.store.Follows.GetPendingRequests(ctx, userID)
}

// Counts returns approved follower/following counts, served from the cache
// when possible.
func (s *FollowService) Counts(ctx context.Context, userID uint) (cache.FollowCounts, error) {
	l := logger.Ctx(ctx)
	if counts, ok, err := s.cache.GetFollowCounts(ctx, userID); err != nil {
		l.Warn().Err(err).Uint(logger.FieldUserID, userID).Msg("follow count cache read failed")
	} else if ok {
		return counts, nil
	}

	followers, err := s.store.Follows.GetFollowersCount(ctx, userID)
	if err != nil {
		return cache.FollowCounts{}, err
	}
	following, err := s.store.Follows.GetFollowingCount(ctx, userID)
	if err != nil {
		return cache.FollowCounts{}, err
	}
	counts := cache.FollowCounts{Followers: followers, Following: following}
	if err := s.cache.SetFollowCounts(ctx, userID, counts); err != nil {
		l.Warn().Err(err).Uint(logger.FieldUserID, userID).Msg("follow count cache write failed")
	}
	return counts, nil
}

func (s *FollowService) invalidate(ctx context.Context, userIDs ...uint) {
	if err := s.cache.InvalidateFollowCounts(ctx, userIDs...); err != nil {
		l := logger.Ctx(ctx)
		l.Warn().Err(err).Msg("follow count cache invalidation failed")
	}
}
