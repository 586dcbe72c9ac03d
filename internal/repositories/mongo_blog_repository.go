package repositories

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBlogRepository implements BlogRepository for MongoDB. Category and
// tags are embedded in the blog document; their canonical rows stay in the
// relational store.
type MongoBlogRepository struct {
	collection *mongo.Collection
}

// NewMongoBlogRepository creates a new MongoBlogRepository
func NewMongoBlogRepository(db *mongo.Database) *MongoBlogRepository {
	return &MongoBlogRepository{collection: db.Collection("blogs")}
}

// EnsureIndexes creates the unique slug index and the listing indexes.
func (r *MongoBlogRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
		{Keys: bson.D{{Key: "views", Value: -1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *MongoBlogRepository) CreateBlog(ctx context.Context, blog *models.Blog) error {
	now := time.Now()
	if blog.CreatedAt.IsZero() {
		blog.CreatedAt = now
	}
	blog.UpdatedAt = now
	if blog.Tags == nil {
		blog.Tags = []models.Tag{}
	}
	_, err := r.collection.InsertOne(ctx, blog)
	return err
}

func (r *MongoBlogRepository) UpdateBlog(ctx context.Context, blog *models.Blog) error {
	blog.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"title":        blog.Title,
			"slug":         blog.Slug,
			"category_id":  blog.CategoryID,
			"category":     blog.Category,
			"tags":         blog.Tags,
			"image":        blog.Image,
			"excerpt":      blog.Excerpt,
			"content":      blog.Content,
			"is_published": blog.IsPublished,
			"updated_at":   blog.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": blog.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoBlogRepository) DeleteBlog(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoBlogRepository) GetBlogByID(ctx context.Context, id string) (*models.Blog, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoBlogRepository) GetBlogBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *MongoBlogRepository) findOne(ctx context.Context, filter bson.M) (*models.Blog, error) {
	var blog models.Blog
	err := r.collection.FindOne(ctx, filter).Decode(&blog)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

func (r *MongoBlogRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *MongoBlogRepository) ListBlogs(ctx context.Context, q BlogQuery) ([]models.Blog, error) {
	filter := bson.M{}
	if q.AuthorID != 0 {
		filter["author_id"] = q.AuthorID
	}
	if q.PublishedOnly {
		filter["is_published"] = true
	}
	if !q.Since.IsZero() {
		filter["created_at"] = bson.M{"$gte": q.Since}
	}
	if q.TitleContains != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(q.TitleContains), "$options": "i"}
	}

	sort := bson.D{{Key: "created_at", Value: -1}}
	if q.OrderByViews {
		sort = bson.D{{Key: "views", Value: -1}, {Key: "created_at", Value: -1}}
	}
	findOptions := options.Find().SetSort(sort)
	if q.Limit > 0 {
		findOptions.SetLimit(int64(q.Limit))
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var blogs []models.Blog
	if err = cursor.All(ctx, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

func (r *MongoBlogRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	var blog models.Blog
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&blog)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return blog.Views, nil
}

func (r *MongoBlogRepository) DeleteBlogsByAuthor(ctx context.Context, authorID uint) ([]string, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"author_id": authorID}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	if len(ids) == 0 {
		return ids, nil
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, err
	}
	return ids, nil
}
