package models

import "time"

// Visibility controls who may see a profile and its blogs.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityFollowers Visibility = "followers"
	VisibilityPrivate   Visibility = "private"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFollowers, VisibilityPrivate:
		return true
	}
	return false
}

// RequiresApproval reports whether new followers start out pending.
func (v Visibility) RequiresApproval() bool {
	return v == VisibilityPrivate || v == VisibilityFollowers
}

// Profile is created together with its User and lives exactly as long.
type Profile struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	UserID         uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	Name           string     `json:"name" gorm:"size:100"`
	Bio            string     `json:"bio" gorm:"type:text"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	ProfilePicture string     `json:"profile_picture"`
	Website        string     `json:"website"`
	Twitter        string     `json:"twitter"`
	LinkedIn       string     `json:"linkedin"`
	GitHub         string     `json:"github"`
	Instagram      string     `json:"instagram"`
	Visibility     Visibility `json:"visibility" gorm:"size:10;not null;default:public"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Age returns the completed years since DateOfBirth, or nil when unknown.
func (p *Profile) Age(now time.Time) *int {
	if p.DateOfBirth == nil {
		return nil
	}
	dob := *p.DateOfBirth
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return &age
}

type UpdateProfileRequest struct {
	Name           string `json:"name" form:"name" validate:"omitempty,max=100"`
	Bio            string `json:"bio" form:"bio" validate:"omitempty,max=2000"`
	DateOfBirth    string `json:"date_of_birth" form:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	ProfilePicture string `json:"profile_picture" form:"profile_picture" validate:"omitempty,url"`
	Website        string `json:"website" form:"website" validate:"omitempty,url"`
	Twitter        string `json:"twitter" form:"twitter" validate:"omitempty,url"`
	LinkedIn       string `json:"linkedin" form:"linkedin" validate:"omitempty,url"`
	GitHub         string `json:"github" form:"github" validate:"omitempty,url"`
	Instagram      string `json:"instagram" form:"instagram" validate:"omitempty,url"`
}

type UpdateVisibilityRequest struct {
	Visibility Visibility `json:"visibility" form:"visibility" validate:"required,oneof=public followers private"`
}
