package models

import (
	"database/sql"
	"time"
)

// ClubPost is a post published inside a club
type ClubPost struct {
	ID           int64         `json:"id"`
	ClubID       int64         `json:"club_id"`
	CreatedByID  int64         `json:"created_by_id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	MembersOnly  bool          `json:"members_only"`
	CoverImageID sql.NullInt64 `json:"cover_image_id"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// PostVisibility holds only the fields needed to decide who may read a post
type PostVisibility struct {
	ID          int64 `json:"id"`
	ClubID      int64 `json:"club_id"`
	CreatedByID int64 `json:"created_by_id"`
	MembersOnly bool  `json:"members_only"`
}
