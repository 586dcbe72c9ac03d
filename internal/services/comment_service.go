package services

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/repositories"
)

type CommentService struct {
	store    *repositories.Store
	notifier *Notifier
	filter   *VisibilityFilter
	now      func() time.Time
}

func NewCommentService(store *repositories.Store, notifier *Notifier, filter *VisibilityFilter) *CommentService {
	return &CommentService{store: store, notifier: notifier, filter: filter, now: time.Now}
}

// Add posts a comment, or a reply when req.ParentID is set. The parent must
// belong to the same blog.
func (s *CommentService) Add(ctx context.Context, userID uint, blogID string, req models.CreateCommentRequest) (*models.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyComment
	}

	var comment *models.Comment
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		blog, err := tx.Blogs.GetBlogByID(ctx, blogID)
		if err != nil {
			return notFoundOr(err, ErrBlogNotFound)
		}
		author, err := tx.Users.GetUserByID(ctx, userID)
		if err != nil {
			return notFoundOr(err, ErrUserNotFound)
		}

		var parent *models.Comment
		if req.ParentID != nil {
			parent, err = tx.Comments.GetCommentByID(ctx, *req.ParentID)
			if err != nil {
				return notFoundOr(err, ErrCommentNotFound)
			}
			if parent.BlogID != blog.ID {
				return ErrCommentNotFound
			}
		}

		comment = &models.Comment{
			BlogID:     blog.ID,
			UserID:     userID,
			ParentID:   req.ParentID,
			Content:    content,
			IsApproved: true,
			CreatedAt:  s.now(),
		}
		if err := tx.Comments.CreateComment(ctx, comment); err != nil {
			return err
		}
		comment.User = author
		return s.notifier.Commented(ctx, tx, author, blog, comment, parent)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// Threads returns the approved top-level comments of a blog with their
// replies, provided viewerID may see the blog.
func (s *CommentService) Threads(ctx context.Context, viewerID uint, blogID string) ([]models.Comment, error) {
	blog, err := s.store.Blogs.GetBlogByID(ctx, blogID)
	if err != nil {
		return nil, notFoundOr(err, ErrBlogNotFound)
	}
	if err := s.canRead(ctx, viewerID, blog); err != nil {
		return nil, err
	}
	return s.store.Comments.GetThreadsByBlogID(ctx, blog.ID)
}

func (s *CommentService) canRead(ctx context.Context, viewerID uint, blog *models.Blog) error {
	if !blog.IsPublished && blog.AuthorID != viewerID {
		return ErrBlogNotFound
	}
	access, err := s.filter.Resolve(ctx, viewerID, blog.AuthorID)
	if err != nil {
		return err
	}
	if access != Visible {
		return ErrBlogNotFound
	}
	return nil
}
