package services

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/blogsphere/backend/internal/cache"
	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/repositories"
	"github.com/anonto42/blogsphere/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	trendingTopN     = 3
	viewDedupeWindow = 24 * time.Hour
	suggestionLimit  = 10
)

// TrendingWindow narrows the trending list by creation date.
type TrendingWindow string

const (
	TrendingAll   TrendingWindow = "all"
	TrendingToday TrendingWindow = "today"
	TrendingWeek  TrendingWindow = "week"
	TrendingMonth TrendingWindow = "month"
)

// ViewStatus tells the client what IncrementView did.
type ViewStatus string

const (
	ViewIncremented   ViewStatus = "incremented"
	ViewSkipped       ViewStatus = "skipped"
	ViewAlreadyViewed ViewStatus = "already_viewed"
)

type ViewResult struct {
	Status ViewStatus `json:"status"`
	Views  int64      `json:"views"`
}

// BlogDetail is a single blog as shown on its page.
type BlogDetail struct {
	models.BlogSummary
	Liked    bool             `json:"liked"`
	Comments []models.Comment `json:"comments"`
}

type BlogService struct {
	store    *repositories.Store
	notifier *Notifier
	filter   *VisibilityFilter
	cache    cache.Cache
	now      func() time.Time
}

func NewBlogService(store *repositories.Store, notifier *Notifier, filter *VisibilityFilter, c cache.Cache) *BlogService {
	return &BlogService{store: store, notifier: notifier, filter: filter, cache: c, now: time.Now}
}

// Create stores a new blog owned by authorID. Category and tags are created
// on first use.
func (s *BlogService) Create(ctx context.Context, authorID uint, req models.BlogRequest) (*models.Blog, error) {
	var blog *models.Blog
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Users.GetUserByID(ctx, authorID); err != nil {
			return notFoundOr(err, ErrUserNotFound)
		}
		now := s.now()
		blog = &models.Blog{
			ID:        uuid.NewString(),
			AuthorID:  authorID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.apply(ctx, tx, blog, req); err != nil {
			return err
		}
		slugValue, err := s.uniqueSlug(ctx, tx, blog.Title)
		if err != nil {
			return err
		}
		blog.Slug = slugValue
		return tx.Blogs.CreateBlog(ctx, blog)
	})
	if err != nil {
		return nil, err
	}
	l := logger.Ctx(ctx)
	l.Info().Str("blog_id", blog.ID).Uint(logger.FieldUserID, authorID).Msg("blog created")
	return blog, nil
}

// Update edits a blog owned by actorID. The slug stays stable across edits.
func (s *BlogService) Update(ctx context.Context, actorID uint, blogSlug string, req models.BlogRequest) (*models.Blog, error) {
	var blog *models.Blog
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		var err error
		blog, err = s.owned(ctx, tx, actorID, blogSlug)
		if err != nil {
			return err
		}
		if err := s.apply(ctx, tx, blog, req); err != nil {
			return err
		}
		blog.UpdatedAt = s.now()
		return tx.Blogs.UpdateBlog(ctx, blog)
	})
	if err != nil {
		return nil, err
	}
	return blog, nil
}

// Delete removes a blog owned by actorID together with its likes and comments.
func (s *BlogService) Delete(ctx context.Context, actorID uint, blogSlug string) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		blog, err := s.owned(ctx, tx, actorID, blogSlug)
		if err != nil {
			return err
		}
		ids := []string{blog.ID}
		if err := tx.Likes.DeleteByBlogIDs(ctx, ids); err != nil {
			return err
		}
		if err := tx.Comments.DeleteByBlogIDs(ctx, ids); err != nil {
			return err
		}
		return tx.Blogs.DeleteBlog(ctx, blog.ID)
	})
}

func (s *BlogService) owned(ctx context.Context, tx *repositories.Store, actorID uint, blogSlug string) (*models.Blog, error) {
	blog, err := tx.Blogs.GetBlogBySlug(ctx, blogSlug)
	if err != nil {
		return nil, notFoundOr(err, ErrBlogNotFound)
	}
	if blog.AuthorID != actorID {
		return nil, ErrNotBlogAuthor
	}
	return blog, nil
}

func (s *BlogService) apply(ctx context.Context, tx *repositories.Store, blog *models.Blog, req models.BlogRequest) error {
	blog.Title = strings.TrimSpace(req.Title)
	blog.Content = req.Content
	blog.Excerpt = req.Excerpt
	blog.Image = req.Image
	if req.IsPublished != nil {
		blog.IsPublished = *req.IsPublished
	}
	if blog.Title == "" || strings.TrimSpace(blog.Content) == "" {
		return &Error{Kind: KindValidation, Msg: "Please fill in all required fields."}
	}

	blog.CategoryID, blog.Category = nil, nil
	if name := strings.TrimSpace(req.Category); name != "" {
		category, err := tx.Taxonomy.GetOrCreateCategory(ctx, name, slug.Make(name))
		if err != nil {
			return err
		}
		blog.CategoryID, blog.Category = &category.ID, category
	}

	blog.Tags = make([]models.Tag, 0, len(req.Tags))
	seen := make(map[string]bool)
	for _, name := range req.Tags {
		name = strings.TrimSpace(name)
		tagSlug := slug.Make(name)
		if tagSlug == "" || seen[tagSlug] {
			continue
		}
		seen[tagSlug] = true
		tag, err := tx.Taxonomy.GetOrCreateTag(ctx, name, tagSlug)
		if err != nil {
			return err
		}
		blog.Tags = append(blog.Tags, *tag)
	}
	return nil
}

// uniqueSlug derives a slug from title and adds a short random suffix when
// the plain form is taken.
func (s *BlogService) uniqueSlug(ctx context.Context, tx *repositories.Store, title string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "blog"
	}
	candidate := base
	for {
		taken, err := tx.Blogs.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + uuid.NewString()[:8]
	}
}

// List returns every published blog viewerID may see, newest first.
func (s *BlogService) List(ctx context.Context, viewerID uint) ([]models.BlogSummary, error) {
	blogs, err := s.store.Blogs.ListBlogs(ctx, repositories.BlogQuery{PublishedOnly: true})
	if err != nil {
		return nil, err
	}
	visible, err := s.filter.FilterBlogs(ctx, viewerID, blogs)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, visible)
}

// Detail returns a blog by slug with its comment threads. Drafts are only
// shown to their author.
func (s *BlogService) Detail(ctx context.Context, viewerID uint, blogSlug string) (*BlogDetail, error) {
	blog, err := s.store.Blogs.GetBlogBySlug(ctx, blogSlug)
	if err != nil {
		return nil, notFoundOr(err, ErrBlogNotFound)
	}
	if !blog.IsPublished && blog.AuthorID != viewerID {
		return nil, ErrBlogNotFound
	}
	access, err := s.filter.Resolve(ctx, viewerID, blog.AuthorID)
	if err != nil {
		return nil, err
	}
	if access != Visible {
		return nil, ErrBlogNotFound
	}

	summaries, err := s.summarize(ctx, []models.Blog{*blog})
	if err != nil {
		return nil, err
	}
	comments, err := s.store.Comments.GetThreadsByBlogID(ctx, blog.ID)
	if err != nil {
		return nil, err
	}
	detail := &BlogDetail{BlogSummary: summaries[0], Comments: comments}
	if viewerID != Anonymous {
		if detail.Liked, err = s.store.Likes.HasUserLikedBlog(ctx, viewerID, blog.ID); err != nil {
			return nil, err
		}
	}
	return detail, nil
}

// Trending ranks published blogs by views. The top three of the unfiltered
// ranking for the window get a one-time trending notification; visibility is
// applied to the returned list only.
func (s *BlogService) Trending(ctx context.Context, viewerID uint, window TrendingWindow, query string) ([]models.BlogSummary, error) {
	q := repositories.BlogQuery{
		PublishedOnly: true,
		TitleContains: strings.TrimSpace(query),
		OrderByViews:  true,
	}
	now := s.now()
	switch window {
	case TrendingToday:
		y, m, d := now.Date()
		q.Since = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case TrendingWeek:
		q.Since = now.AddDate(0, 0, -7)
	case TrendingMonth:
		q.Since = now.AddDate(0, 0, -30)
	}

	blogs, err := s.store.Blogs.ListBlogs(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := s.notifyTrending(ctx, blogs); err != nil {
		return nil, err
	}
	visible, err := s.filter.FilterBlogs(ctx, viewerID, blogs)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, visible)
}

func (s *BlogService) notifyTrending(ctx context.Context, blogs []models.Blog) error {
	top := blogs
	if len(top) > trendingTopN {
		top = top[:trendingTopN]
	}
	if len(top) == 0 {
		return nil
	}
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		for i := range top {
			created, err := s.notifier.Trending(ctx, tx, &top[i])
			if err != nil {
				return err
			}
			if created {
				l := logger.Ctx(ctx)
				l.Info().Str("blog_id", top[i].ID).Msg("trending notification sent")
			}
		}
		return nil
	})
}

// Mine lists userID's published blogs with totals over them.
func (s *BlogService) Mine(ctx context.Context, userID uint) ([]models.BlogSummary, models.BlogStats, error) {
	blogs, err := s.store.Blogs.ListBlogs(ctx, repositories.BlogQuery{AuthorID: userID, PublishedOnly: true})
	if err != nil {
		return nil, models.BlogStats{}, err
	}
	summaries, err := s.summarize(ctx, blogs)
	if err != nil {
		return nil, models.BlogStats{}, err
	}
	stats := models.BlogStats{TotalBlogs: int64(len(summaries))}
	for _, b := range summaries {
		stats.TotalLikes += b.LikeCount
		stats.TotalComments += b.CommentCount
		stats.TotalViews += b.Views
	}
	return summaries, stats, nil
}

// ByAuthor lists ownerID's published blogs for a profile page. The caller is
// expected to have checked visibility already.
func (s *BlogService) ByAuthor(ctx context.Context, ownerID uint) ([]models.BlogSummary, error) {
	blogs, err := s.store.Blogs.ListBlogs(ctx, repositories.BlogQuery{AuthorID: ownerID, PublishedOnly: true})
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, blogs)
}

// IncrementView counts one view of blogID. Authors viewing their own blog are
// not counted, and each viewer counts once per day.
func (s *BlogService) IncrementView(ctx context.Context, viewerID uint, remoteIP, blogID string) (ViewResult, error) {
	blog, err := s.store.Blogs.GetBlogByID(ctx, blogID)
	if err != nil {
		return ViewResult{}, notFoundOr(err, ErrBlogNotFound)
	}
	if !blog.IsPublished {
		return ViewResult{}, ErrBlogNotFound
	}
	if viewerID != Anonymous && viewerID == blog.AuthorID {
		return ViewResult{Status: ViewSkipped, Views: blog.Views}, nil
	}

	viewer := "ip:" + remoteIP
	if viewerID != Anonymous {
		viewer = "u:" + uintString(viewerID)
	}
	first, err := s.cache.MarkViewed(ctx, blog.ID, viewer, viewDedupeWindow)
	if err != nil {
		return ViewResult{}, err
	}
	if !first {
		return ViewResult{Status: ViewAlreadyViewed, Views: blog.Views}, nil
	}
	views, err := s.store.Blogs.IncrementViews(ctx, blog.ID)
	if err != nil {
		return ViewResult{}, notFoundOr(err, ErrBlogNotFound)
	}
	return ViewResult{Status: ViewIncremented, Views: views}, nil
}

func (s *BlogService) SuggestTags(ctx context.Context, prefix string) ([]string, error) {
	tags, err := s.store.Taxonomy.SuggestTags(ctx, strings.TrimSpace(prefix), suggestionLimit)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names, nil
}

func (s *BlogService) SuggestCategories(ctx context.Context, prefix string) ([]string, error) {
	categories, err := s.store.Taxonomy.SuggestCategories(ctx, strings.TrimSpace(prefix), suggestionLimit)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names, nil
}

// summarize attaches authors and engagement counts in three batched queries.
func (s *BlogService) summarize(ctx context.Context, blogs []models.Blog) ([]models.BlogSummary, error) {
	ids := make([]string, 0, len(blogs))
	authorIDs := make([]uint, 0, len(blogs))
	for _, b := range blogs {
		ids = append(ids, b.ID)
		authorIDs = append(authorIDs, b.AuthorID)
	}
	authors, err := s.store.Users.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	likes, err := s.store.Likes.CountByBlogIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.Comments.CountByBlogIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.BlogSummary, 0, len(blogs))
	for _, b := range blogs {
		summary := models.BlogSummary{Blog: b, LikeCount: likes[b.ID], CommentCount: comments[b.ID]}
		if author, ok := authors[b.AuthorID]; ok {
			summary.Author = author.ToCompact()
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
