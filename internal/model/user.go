// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account.
//
// Users authenticate with email + password. The email is the external
// identifier (unique index in the users collection); we still generate our
// own internal string ID (xid) so primary keys stay under our control.
//
// WHY PasswordHash `json:"-"`?
// The hash must never appear in an API response. Tagging it `json:"-"`
// means encoding/json skips it everywhere — a handler cannot leak it by
// accident. The repository excludes it from default reads too; login is
// the only path that asks for it explicitly.
//
// RefreshTokens holds every refresh token currently valid for this user
// (one per device/session). Tokens are appended on login, swapped on
// refresh (rotation), and pulled on logout. Expiry lives inside the JWT
// itself — the set tracks only membership.
type User struct {
	ID            string    `json:"id"        bson:"_id"`
	Name          string    `json:"name"      bson:"name"`
	Email         string    `json:"email"     bson:"email"`
	PasswordHash  string    `json:"-"         bson:"password,omitempty"`
	RefreshTokens []string  `json:"-"         bson:"refreshTokens"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}
