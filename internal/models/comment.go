package models

import "time"

// Comment on a blog. ParentID is set for replies.
type Comment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	BlogID     string    `json:"blog_id" gorm:"type:varchar(36);not null;index"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	ParentID   *uint     `json:"parent_id,omitempty" gorm:"index"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	IsApproved bool      `json:"is_approved" gorm:"not null;index"`
	CreatedAt  time.Time `json:"created_at"`

	User    *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Replies []Comment `json:"replies,omitempty" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content  string `json:"content" form:"content" validate:"required,min=1,max=5000"`
	ParentID *uint  `json:"parent_id" form:"parent_id"`
}
