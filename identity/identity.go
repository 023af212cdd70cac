// Package identity registers, authenticates and removes players and venue
// owners. Credentials live with the external identity provider; profiles live
// in the profile repository.
package identity

import (
	"net/url"
	"time"
)

type Role string

const (
	RolePlayer Role = "player"
	RoleOwner  Role = "owner"
)

func (r Role) Valid() bool {
	switch r {
	case RolePlayer, RoleOwner:
		return true
	}
	return false
}

type Principal struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Mobile    string    `json:"mobile,omitempty" bson:"mobile,omitempty"`
	Role      Role      `json:"role" bson:"role"`
	Avatar    string    `json:"avatar" bson:"avatar"`
	LicenseID string    `json:"licenseId,omitempty" bson:"licenseId,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Registration struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Mobile    string `json:"mobile" validate:"required_if=Role owner"`
	Role      Role   `json:"role" validate:"required,oneof=player owner"`
	LicenseID string `json:"licenseId" validate:"required_if=Role owner"`
}

type Credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	// Role, when set, must match the stored role of the account.
	Role Role `json:"role"`
}

type Session struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresIn    int       `json:"expiresIn,omitempty"`
	Principal    Principal `json:"user"`
}

type ProfilePatch struct {
	Name   *string `json:"name,omitempty"`
	Mobile *string `json:"mobile,omitempty"`
}

// Credential is what the identity provider returns for a verified account.
type Credential struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

func avatarFor(role Role, name, email string) string {
	switch role {
	case RoleOwner:
		return "https://api.dicebear.com/7.x/initials/svg?seed=" + url.QueryEscape(name)
	case RolePlayer:
		return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(email)
	}
	return ""
}
