// Package models defines the data models for the social media service.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a user document in the store. The password hash is
// persisted but never serialized into responses.
type User struct {
	ID                   primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name                 string               `bson:"name" json:"name"`
	Email                string               `bson:"email" json:"email"`
	Password             string               `bson:"password" json:"-"`
	Role                 string               `bson:"role" json:"role"`
	DisplayName          string               `bson:"displayName,omitempty" json:"displayName,omitempty"`
	Bio                  string               `bson:"bio,omitempty" json:"bio,omitempty"`
	Interests            []string             `bson:"interests,omitempty" json:"interests,omitempty"`
	ProfilePicture       string               `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	Active               bool                 `bson:"active" json:"active"`
	Private              bool                 `bson:"private" json:"private"`
	Followers            []primitive.ObjectID `bson:"followers,omitempty" json:"followers,omitempty"`
	Following            []primitive.ObjectID `bson:"following,omitempty" json:"following,omitempty"`
	ResetPasswordToken   string               `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpires time.Time            `bson:"resetPasswordExpires,omitempty" json:"-"`
	CreatedAt            time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// NewUser carries the fields accepted at signup. Name and email arrive
// already normalized (trimmed, email lowercased) and Password is the
// bcrypt hash, never the plaintext.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UpdateUser enumerates the profile fields a PUT may change. Nil means
// "leave unchanged". Identifier, role, password and follow lists are not
// reachable through this type.
type UpdateUser struct {
	Name           *string
	Email          *string
	DisplayName    *string
	Bio            *string
	Interests      *[]string
	ProfilePicture *string
	Active         *bool
	Private        *bool
}

// UserQuery describes a directory listing request.
type UserQuery struct {
	Role     string
	Active   *bool
	Search   string
	SortBy   string
	SortDesc bool
	Page     int64
	Limit    int64
}

// IsFollowing reports whether the user's following list contains id.
func (u User) IsFollowing(id primitive.ObjectID) bool {
	for _, f := range u.Following {
		if f == id {
			return true
		}
	}
	return false
}

// HasFollower reports whether the user's followers list contains id.
func (u User) HasFollower(id primitive.ObjectID) bool {
	for _, f := range u.Followers {
		if f == id {
			return true
		}
	}
	return false
}
