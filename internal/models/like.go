package models

import "time"

// Like is unique per (user, blog).
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_like_user_blog"`
	BlogID    string    `json:"blog_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_like_user_blog;index"`
	CreatedAt time.Time `json:"created_at"`
}
