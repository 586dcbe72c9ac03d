package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaxonomyRepository manages categories and tags.
type TaxonomyRepository interface {
	GetOrCreateCategory(ctx context.Context, name, slug string) (*models.Category, error)
	GetOrCreateTag(ctx context.Context, name, slug string) (*models.Tag, error)
	SuggestCategories(ctx context.Context, prefix string, limit int) ([]models.Category, error)
	SuggestTags(ctx context.Context, prefix string, limit int) ([]models.Tag, error)
}

type PostgresTaxonomyRepository struct {
	db *gorm.DB
}

func NewPostgresTaxonomyRepository(db *gorm.DB) *PostgresTaxonomyRepository {
	return &PostgresTaxonomyRepository{db: db}
}

// GetOrCreateCategory inserts the category if its slug is unused and
// returns the stored row either way.
func (r *PostgresTaxonomyRepository) GetOrCreateCategory(ctx context.Context, name, slug string) (*models.Category, error) {
	db := r.db.WithContext(ctx)
	category := models.Category{Name: name, Slug: slug}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&category).Error; err != nil {
		return nil, err
	}
	var stored models.Category
	if err := db.Where("slug = ?", slug).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *PostgresTaxonomyRepository) GetOrCreateTag(ctx context.Context, name, slug string) (*models.Tag, error) {
	db := r.db.WithContext(ctx)
	tag := models.Tag{Name: name, Slug: slug}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
		return nil, err
	}
	var stored models.Tag
	if err := db.Where("slug = ?", slug).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *PostgresTaxonomyRepository) SuggestCategories(ctx context.Context, prefix string, limit int) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", strings.ToLower(prefix)+"%").
		Order("name").Limit(limit).
		Find(&categories).Error
	return categories, err
}

func (r *PostgresTaxonomyRepository) SuggestTags(ctx context.Context, prefix string, limit int) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", strings.ToLower(prefix)+"%").
		Order("name").Limit(limit).
		Find(&tags).Error
	return tags, err
}
