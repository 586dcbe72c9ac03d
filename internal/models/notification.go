package models

import "time"

type NotificationType string

const (
	NotificationLike          NotificationType = "like"
	NotificationComment       NotificationType = "comment"
	NotificationReply         NotificationType = "reply"
	NotificationFollow        NotificationType = "follow"
	NotificationFollowRequest NotificationType = "follow_request"
	NotificationTrending      NotificationType = "trending"
)

// RefKind tags which entity a notification points at.
type RefKind string

const (
	RefNone    RefKind = ""
	RefBlog    RefKind = "blog"
	RefComment RefKind = "comment"
	RefFollow  RefKind = "follow"
)

// NotificationRef is a blog, comment or follow reference, or nothing.
// The referenced row may have been deleted since.
type NotificationRef struct {
	Kind RefKind `json:"kind,omitempty" gorm:"size:10"`
	ID   string  `json:"id,omitempty" gorm:"size:36;index"`
}

func NoRef() NotificationRef                  { return NotificationRef{} }
func BlogRef(blogID string) NotificationRef   { return NotificationRef{Kind: RefBlog, ID: blogID} }
func CommentRef(id uint) NotificationRef      { return NotificationRef{Kind: RefComment, ID: uintToString(id)} }
func FollowRef(followID uint) NotificationRef { return NotificationRef{Kind: RefFollow, ID: uintToString(followID)} }

func (r NotificationRef) BlogID() (string, bool) {
	return r.ID, r.Kind == RefBlog && r.ID != ""
}

func (r NotificationRef) CommentID() (uint, bool) {
	if r.Kind != RefComment {
		return 0, false
	}
	return stringToUint(r.ID)
}

func (r NotificationRef) FollowID() (uint, bool) {
	if r.Kind != RefFollow {
		return 0, false
	}
	return stringToUint(r.ID)
}

// Notification is only ever created as a side effect of another action.
// A nil SenderID marks a system notification.
type Notification struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	SenderID    *uint            `json:"sender_id" gorm:"index"`
	RecipientID uint             `json:"recipient_id" gorm:"not null;index"`
	Type        NotificationType `json:"type" gorm:"size:20;not null;index"`
	Message     string           `json:"message" gorm:"size:255"`
	Ref         NotificationRef  `json:"ref" gorm:"embedded;embeddedPrefix:ref_"`
	DedupeKey   *string          `json:"-" gorm:"size:100;uniqueIndex"`
	IsRead      bool             `json:"is_read" gorm:"not null;default:false;index"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index"`
}

type FollowRequestAction string

const (
	FollowRequestAccept FollowRequestAction = "accept"
	FollowRequestReject FollowRequestAction = "reject"
)
