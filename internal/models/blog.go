package models

import "time"

// Blog is stored in postgres by default; the bson tags serve the mongo blog store.
type Blog struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey" bson:"_id"`
	AuthorID    uint      `json:"author_id" gorm:"not null;index" bson:"author_id"`
	Title       string    `json:"title" gorm:"size:200;not null" bson:"title"`
	Slug        string    `json:"slug" gorm:"size:220;uniqueIndex;not null" bson:"slug"`
	CategoryID  *uint     `json:"category_id,omitempty" gorm:"index" bson:"category_id,omitempty"`
	Category    *Category `json:"category,omitempty" gorm:"constraint:OnDelete:SET NULL" bson:"category,omitempty"`
	Tags        []Tag     `json:"tags" gorm:"many2many:blog_tags" bson:"tags"`
	Image       string    `json:"image,omitempty" bson:"image,omitempty"`
	Excerpt     string    `json:"excerpt" gorm:"size:300" bson:"excerpt"`
	Content     string    `json:"content" gorm:"type:text" bson:"content"`
	IsPublished bool      `json:"is_published" gorm:"not null;index" bson:"is_published"`
	Views       int64     `json:"views" gorm:"not null;default:0;index" bson:"views"`
	CreatedAt   time.Time `json:"created_at" gorm:"index" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

type Category struct {
	ID          uint   `json:"id" gorm:"primaryKey" bson:"id"`
	Name        string `json:"name" gorm:"size:100;uniqueIndex;not null" bson:"name"`
	Slug        string `json:"slug" gorm:"size:120;uniqueIndex;not null" bson:"slug"`
	Description string `json:"description,omitempty" gorm:"type:text" bson:"description,omitempty"`
}

type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey" bson:"id"`
	Name string `json:"name" gorm:"size:50;uniqueIndex;not null" bson:"name"`
	Slug string `json:"slug" gorm:"size:60;uniqueIndex;not null" bson:"slug"`
}

// BlogSummary is a blog with its engagement counts, as listed to readers.
type BlogSummary struct {
	Blog
	Author       UserCompact `json:"author"`
	LikeCount    int64       `json:"like_count"`
	CommentCount int64       `json:"comment_count"`
}

// BlogStats aggregates an author's own blogs.
type BlogStats struct {
	TotalBlogs    int64 `json:"total_blogs"`
	TotalLikes    int64 `json:"total_likes"`
	TotalComments int64 `json:"total_comments"`
	TotalViews    int64 `json:"total_views"`
}

// BlogRequest is used for both create and edit.
type BlogRequest struct {
	Title       string   `json:"title" form:"title" validate:"required,min=1,max=200"`
	Category    string   `json:"category" form:"category" validate:"omitempty,max=100"`
	Tags        []string `json:"tags" form:"tags" validate:"omitempty,max=20,dive,min=1,max=50"`
	Image       string   `json:"image" form:"image" validate:"omitempty,url"`
	Excerpt     string   `json:"excerpt" form:"excerpt" validate:"omitempty,max=300"`
	Content     string   `json:"content" form:"content" validate:"required"`
	IsPublished *bool    `json:"is_published" form:"is_published"`
}
