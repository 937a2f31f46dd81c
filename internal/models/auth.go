// Package models defines the data structures persisted by the club server.
package models

import (
	"time"
)

// User represents a platform user as far as clubs care about it
type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	IsModerator bool      `json:"is_moderator"`
	Muted       bool      `json:"muted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Session links an opaque session id issued by the auth service to a user
type Session struct {
	SessionID string    `json:"session_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Viewer is the identity a request is evaluated against.
// A nil *Viewer is an anonymous caller.
type Viewer struct {
	UserID      int64 `json:"user_id"`
	IsModerator bool  `json:"is_moderator"`
	Muted       bool  `json:"muted"`
}

// SessionViewer is the viewer behind a session until the session expires
type SessionViewer struct {
	Viewer
	ExpiresAt time.Time `json:"expires_at"`
}

// ID returns the viewer's user id, or 0 for anonymous callers
func (v *Viewer) ID() int64 {
	if v == nil {
		return 0
	}
	return v.UserID
}

// Moderator reports whether the viewer is a platform moderator
func (v *Viewer) Moderator() bool {
	return v != nil && v.IsModerator
}
