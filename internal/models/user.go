package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is an account. Username is the public handle used in URLs.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email       string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Password    string    `json:"-"`                              // bcrypt hash
	FirebaseUID *string   `json:"-" gorm:"size:128;uniqueIndex"` // set for accounts created through firebase login
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Profile *Profile `json:"profile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// UserCompact is the shape embedded in other payloads (notifications, comments, follow lists).
type UserCompact struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

func (u *User) ToCompact() UserCompact {
	c := UserCompact{ID: u.ID, Username: u.Username}
	if u.Profile != nil {
		c.Name = u.Profile.Name
		c.ProfilePicture = u.Profile.ProfilePicture
	}
	return c
}

type SignupRequest struct {
	Username  string `json:"username" form:"username" validate:"required,min=3,max=150,alphanumunicode"`
	Email     string `json:"email" form:"email" validate:"required,email"`
	Password1 string `json:"password1" form:"password1" validate:"required,min=8"`
	Password2 string `json:"password2" form:"password2" validate:"required,eqfield=Password1"`
}

type LoginRequest struct {
	Login    string `json:"login" form:"login" validate:"required"` // email or username
	Password string `json:"password" form:"password" validate:"required"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" form:"idToken" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword  string `json:"old_password" form:"old_password" validate:"required"`
	NewPassword1 string `json:"new_password1" form:"new_password1" validate:"required,min=8"`
	NewPassword2 string `json:"new_password2" form:"new_password2" validate:"required"`
}

type PasswordResetRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
}

type PasswordResetConfirmRequest struct {
	Username     string `json:"username" form:"username" validate:"required"`
	Code         string `json:"code" form:"code" validate:"required,numeric"`
	NewPassword1 string `json:"new_password1" form:"new_password1" validate:"required,min=8"`
	NewPassword2 string `json:"new_password2" form:"new_password2" validate:"required"`
}

type DeleteAccountRequest struct {
	Password     string `json:"password" form:"password" validate:"required"`
	Confirmation string `json:"confirmation" form:"confirmation" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
