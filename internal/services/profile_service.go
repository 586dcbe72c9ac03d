package services

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/blogsphere/backend/internal/cache"
	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/repositories"
	"github.com/anonto42/blogsphere/backend/pkg/logger"
)

const searchLimit = 50

// ProfileView is what a viewer gets for someone's profile page. When Access
// is not visible only the public card fields are filled in.
type ProfileView struct {
	User        models.UserCompact   `json:"user"`
	Access      string               `json:"access"`
	Profile     *models.Profile      `json:"profile,omitempty"`
	Age         *int                 `json:"age,omitempty"`
	Blogs       []models.BlogSummary `json:"blogs,omitempty"`
	FollowState models.FollowState   `json:"follow_state"`
	Counts      *cache.FollowCounts  `json:"counts,omitempty"`
	IsOwner     bool                 `json:"is_owner"`
}

type ProfileService struct {
	store   *repositories.Store
	filter  *VisibilityFilter
	follows *FollowService
	blogs   *BlogService
	now     func() time.Time
}

func NewProfileService(store *repositories.Store, filter *VisibilityFilter, follows *FollowService, blogs *BlogService) *ProfileService {
	return &ProfileService{store: store, filter: filter, follows: follows, blogs: blogs, now: time.Now}
}

// View renders username's profile for viewerID after the visibility check.
func (s *ProfileService) View(ctx context.Context, viewerID uint, username string) (*ProfileView, error) {
	owner, err := s.store.Users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}
	access, err := s.filter.Resolve(ctx, viewerID, owner.ID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{
		User:    owner.ToCompact(),
		Access:  access.String(),
		IsOwner: viewerID != Anonymous && viewerID == owner.ID,
	}
	if view.FollowState, err = s.follows.State(ctx, viewerID, owner.ID); err != nil {
		return nil, err
	}
	if access != Visible {
		return view, nil
	}

	view.Profile = owner.Profile
	if owner.Profile != nil {
		view.Age = owner.Profile.Age(s.now())
	}
	counts, err := s.follows.Counts(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	view.Counts = &counts
	if view.Blogs, err = s.blogs.ByAuthor(ctx, owner.ID); err != nil {
		return nil, err
	}
	return view, nil
}

// Get returns userID with its profile, for the owner's own pages.
func (s *ProfileService) Get(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.store.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}
	return user, nil
}

// Update overwrites the editable profile fields.
func (s *ProfileService) Update(ctx context.Context, userID uint, req models.UpdateProfileRequest) (*models.Profile, error) {
	var dob *time.Time
	if req.DateOfBirth != "" {
		t, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, &Error{Kind: KindValidation, Msg: "Date of birth must be in YYYY-MM-DD format."}
		}
		if t.After(s.now()) {
			return nil, &Error{Kind: KindValidation, Msg: "Date of birth cannot be in the future."}
		}
		dob = &t
	}

	var profile *models.Profile
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		var err error
		profile, err = tx.Profiles.GetByUserID(ctx, userID)
		if err != nil {
			return notFoundOr(err, ErrUserNotFound)
		}
		profile.Name = strings.TrimSpace(req.Name)
		profile.Bio = req.Bio
		profile.DateOfBirth = dob
		profile.ProfilePicture = req.ProfilePicture
		profile.Website = req.Website
		profile.Twitter = req.Twitter
		profile.LinkedIn = req.LinkedIn
		profile.GitHub = req.GitHub
		profile.Instagram = req.Instagram
		profile.UpdatedAt = s.now()
		return tx.Profiles.UpdateProfile(ctx, profile)
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// SetVisibility changes who may see userID's profile. Existing follow edges
// are kept as they are.
func (s *ProfileService) SetVisibility(ctx context.Context, userID uint, visibility models.Visibility) error {
	if !visibility.Valid() {
		return ErrInvalidVisibility
	}
	if err := s.store.Profiles.UpdateVisibility(ctx, userID, visibility); err != nil {
		return notFoundOr(err, ErrUserNotFound)
	}
	l := logger.Ctx(ctx)
	l.Info().Uint(logger.FieldUserID, userID).Str("visibility", string(visibility)).Msg("profile visibility changed")
	return nil
}

// Search finds users by username or display name, excluding the viewer.
func (s *ProfileService) Search(ctx context.Context, viewerID uint, query string) ([]models.UserCompact, error) {
	users, err := s.store.Users.SearchUsers(ctx, strings.TrimSpace(query), searchLimit)
	if err != nil {
		return nil, err
	}
	result := make([]models.UserCompact, 0, len(users))
	for i := range users {
		if users[i].ID == viewerID {
			continue
		}
		result = append(result, users[i].ToCompact())
	}
	return result, nil
}
