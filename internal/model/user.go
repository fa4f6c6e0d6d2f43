package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account document in the `users` collection.
// The password hash and the refresh-token slot never leave the server:
// both are tagged json:"-" so every response is sanitized by construction.
//
// Fields:
//
//	ID              - document id.
//	UserName        - unique login name.
//	FullName        - display name.
//	Email           - unique email address.
//	PasswordHash    - bcrypt hash, stored under "password".
//	LastLogin       - set on every successful login.
//	LastLogout      - set on logout.
//	LastSessionTime - duration between the last login and logout.
//	RefreshToken    - SHA-256 of the current refresh token; empty when logged out.
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserName        string             `bson:"userName" json:"userName"`
	FullName        string             `bson:"fullName" json:"fullName"`
	Email           string             `bson:"email" json:"email"`
	PasswordHash    string             `bson:"password" json:"-"`
	LastLogin       *time.Time         `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	LastLogout      *time.Time         `bson:"lastLogout,omitempty" json:"lastLogout,omitempty"`
	LastSessionTime string             `bson:"lastSessionTime,omitempty" json:"lastSessionTime,omitempty"`
	RefreshToken    string             `bson:"refreshToken,omitempty" json:"-"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserPatch lists the profile fields that can change after registration.
// Nil fields are left untouched.
type UserPatch struct {
	Email        *string
	FullName     *string
	PasswordHash *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.FullName == nil && p.PasswordHash == nil
}
