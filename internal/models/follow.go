package models

import "time"

// FollowState is the relationship of one ordered (follower, following) pair.
type FollowState string

const (
	FollowStateNone    FollowState = "none"
	FollowStatePending FollowState = "pending"
	FollowStateActive  FollowState = "active"
)

// Follow is a directed edge. IsApproved=false means the request is pending.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"not null;uniqueIndex:idx_follower_following"`
	FollowingID uint      `json:"following_id" gorm:"not null;uniqueIndex:idx_follower_following;index"`
	IsApproved  bool      `json:"is_approved" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`

	Follower  *User `json:"follower,omitempty" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Following *User `json:"following,omitempty" gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
}

// State maps a possibly nil edge to its FollowState.
func (f *Follow) State() FollowState {
	switch {
	case f == nil:
		return FollowStateNone
	case f.IsApproved:
		return FollowStateActive
	default:
		return FollowStatePending
	}
}
