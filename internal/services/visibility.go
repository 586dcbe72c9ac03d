package services

import (
	"context"
	"errors"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/repositories"
)

// Access is the outcome of a visibility check.
type Access int

const (
	Visible Access = iota
	HiddenPrivate
	HiddenFollowersOnly
)

func (a Access) String() string {
	switch a {
	case Visible:
		return "visible"
	case HiddenPrivate:
		return "private"
	case HiddenFollowersOnly:
		return "followers_only"
	}
	return "unknown"
}

// Anonymous is the viewer ID used for unauthenticated requests.
const Anonymous uint = 0

// Decide applies the visibility rules. activeFollower reports whether viewer
// has an approved edge to owner; it is ignored unless visibility is followers.
func Decide(viewerID, ownerID uint, visibility models.Visibility, activeFollower bool) Access {
	isOwner := viewerID != Anonymous && viewerID == ownerID
	switch visibility {
	case models.VisibilityPrivate:
		if isOwner {
			return Visible
		}
		return HiddenPrivate
	case models.VisibilityFollowers:
		if isOwner || activeFollower {
			return Visible
		}
		return HiddenFollowersOnly
	default:
		return Visible
	}
}

// VisibilityFilter resolves Access against stored profiles and follow edges.
type VisibilityFilter struct {
	store *repositories.Store
}

func NewVisibilityFilter(store *repositories.Store) *VisibilityFilter {
	return &VisibilityFilter{store: store}
}

// Resolve decides whether viewerID may see ownerID's profile and blogs.
// A missing profile is treated as public.
func (f *VisibilityFilter) Resolve(ctx context.Context, viewerID, ownerID uint) (Access, error) {
	visibility := models.VisibilityPublic
	profile, err := f.store.Profiles.GetByUserID(ctx, ownerID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return HiddenPrivate, err
	}
	if profile != nil {
		visibility = profile.Visibility
	}
	return f.resolve(ctx, viewerID, ownerID, visibility)
}

func (f *VisibilityFilter) resolve(ctx context.Context, viewerID, ownerID uint, visibility models.Visibility) (Access, error) {
	active := false
	if visibility == models.VisibilityFollowers && viewerID != Anonymous && viewerID != ownerID {
		var err error
		active, err = f.store.Follows.IsActiveFollower(ctx, viewerID, ownerID)
		if err != nil {
			return HiddenFollowersOnly, err
		}
	}
	return Decide(viewerID, ownerID, visibility, active), nil
}

// FilterBlogs keeps the blogs viewerID may see. Each blog is checked against
// its own author; results are reused for the same author within one call.
func (f *VisibilityFilter) FilterBlogs(ctx context.Context, viewerID uint, blogs []models.Blog) ([]models.Blog, error) {
	decided := make(map[uint]Access)
	visible := make([]models.Blog, 0, len(blogs))
	for _, blog := range blogs {
		access, ok := decided[blog.AuthorID]
		if !ok {
			var err error
			access, err = f.Resolve(ctx, viewerID, blog.AuthorID)
			if err != nil {
				return nil, err
			}
			decided[blog.AuthorID] = access
		}
		if access == Visible {
			visible = append(visible, blog)
		}
	}
	return visible, nil
}
