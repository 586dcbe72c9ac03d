package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"gorm.io/gorm"
)

// BlogQuery filters ListBlogs. Zero values mean "no filter".
type BlogQuery struct {
	AuthorID      uint
	PublishedOnly bool
	Since         time.Time
	TitleContains string
	OrderByViews  bool
	Limit         int
}

// BlogRepository defines the interface for blog data operations
type BlogRepository interface {
	CreateBlog(ctx context.Context, blog *models.Blog) error
	UpdateBlog(ctx context.Context, blog *models.Blog) error
	DeleteBlog(ctx context.Context, id string) error
	GetBlogByID(ctx context.Context, id string) (*models.Blog, error)
	GetBlogBySlug(ctx context.Context, slug string) (*models.Blog, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListBlogs(ctx context.Context, q BlogQuery) ([]models.Blog, error)
	IncrementViews(ctx context.Context, id string) (int64, error)
	// DeleteBlogsByAuthor returns the IDs of the removed blogs.
	DeleteBlogsByAuthor(ctx context.Context, authorID uint) ([]string, error)
}

// PostgresBlogRepository implements BlogRepository for PostgreSQL
type PostgresBlogRepository struct {
	db *gorm.DB
}

// NewPostgresBlogRepository creates a new PostgresBlogRepository
func NewPostgresBlogRepository(db *gorm.DB) *PostgresBlogRepository {
	return &PostgresBlogRepository{db: db}
}

func (r *PostgresBlogRepository) CreateBlog(ctx context.Context, blog *models.Blog) error {
	return r.db.WithContext(ctx).Omit("Category").Create(blog).Error
}

// UpdateBlog saves the scalar fields and replaces the tag set.
func (r *PostgresBlogRepository) UpdateBlog(ctx context.Context, blog *models.Blog) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Category", "Tags").Save(blog).Error; err != nil {
		return err
	}
	return db.Model(blog).Association("Tags").Replace(blog.Tags)
}

func (r *PostgresBlogRepository) DeleteBlog(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Select("Tags").Delete(&models.Blog{ID: id})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresBlogRepository) GetBlogByID(ctx context.Context, id string) (*models.Blog, error) {
	var blog models.Blog
	if err := r.db.WithContext(ctx).Preload("Category").Preload("Tags").Where("id = ?", id).First(&blog).Error; err != nil {
		return nil, err
	}
	return &blog, nil
}

func (r *PostgresBlogRepository) GetBlogBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	var blog models.Blog
	if err := r.db.WithContext(ctx).Preload("Category").Preload("Tags").Where("slug = ?", slug).First(&blog).Error; err != nil {
		return nil, err
	}
	return &blog, nil
}

func (r *PostgresBlogRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Blog{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *PostgresBlogRepository) ListBlogs(ctx context.Context, q BlogQuery) ([]models.Blog, error) {
	db := r.db.WithContext(ctx).Preload("Category").Preload("Tags")
	if q.AuthorID != 0 {
		db = db.Where("author_id = ?", q.AuthorID)
	}
	if q.PublishedOnly {
		db = db.Where("is_published = ?", true)
	}
	if !q.Since.IsZero() {
		db = db.Where("created_at >= ?", q.Since)
	}
	if q.TitleContains != "" {
		db = db.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q.TitleContains)+"%")
	}
	if q.OrderByViews {
		db = db.Order("views DESC")
	}
	db = db.Order("created_at DESC")
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}

	var blogs []models.Blog
	err := db.Find(&blogs).Error
	return blogs, err
}

// IncrementViews bumps the counter in SQL and returns the new value.
func (r *PostgresBlogRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&models.Blog{}).Where("id = ?", id).UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	var views int64
	err := db.Model(&models.Blog{}).Select("views").Where("id = ?", id).Scan(&views).Error
	return views, err
}

func (r *PostgresBlogRepository) DeleteBlogsByAuthor(ctx context.Context, authorID uint) ([]string, error) {
	db := r.db.WithContext(ctx)
	var ids []string
	if err := db.Model(&models.Blog{}).Where("author_id = ?", authorID).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return ids, nil
	}
	if err := db.Exec("DELETE FROM blog_tags WHERE blog_id IN ?", ids).Error; err != nil {
		return nil, err
	}
	if err := db.Where("id IN ?", ids).Delete(&models.Blog{}).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
