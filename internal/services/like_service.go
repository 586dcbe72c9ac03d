package services

import (
	"context"
	"time"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/repositories"
)

// LikeResult is returned to the AJAX like button.
type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

type LikeService struct {
	store    *repositories.Store
	notifier *Notifier
	now      func() time.Time
}

func NewLikeService(store *repositories.Store, notifier *Notifier) *LikeService {
	return &LikeService{store: store, notifier: notifier, now: time.Now}
}

// Toggle likes blogID for userID, or removes the like when one exists. Only
// the unlike to like transition notifies the author.
func (s *LikeService) Toggle(ctx context.Context, userID uint, blogID string) (LikeResult, error) {
	var result LikeResult
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		blog, err := tx.Blogs.GetBlogByID(ctx, blogID)
		if err != nil {
			return notFoundOr(err, ErrBlogNotFound)
		}
		liker, err := tx.Users.GetUserByID(ctx, userID)
		if err != nil {
			return notFoundOr(err, ErrUserNotFound)
		}

		inserted, err := tx.Likes.InsertLike(ctx, &models.Like{UserID: userID, BlogID: blog.ID, CreatedAt: s.now()})
		if err != nil {
			return err
		}
		if inserted {
			if err := s.notifier.Liked(ctx, tx, liker, blog); err != nil {
				return err
			}
		} else if _, err := tx.Likes.DeleteLike(ctx, userID, blog.ID); err != nil {
			return err
		}

		count, err := tx.Likes.GetLikesCountByBlogID(ctx, blog.ID)
		if err != nil {
			return err
		}
		result = LikeResult{Liked: inserted, LikeCount: count}
		return nil
	})
	return result, err
}
