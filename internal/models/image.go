package models

import (
	"database/sql"
	"time"
)

// Image is a persisted image record
type Image struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	URL       string         `json:"url"`
	Name      sql.NullString `json:"name"`
	Width     sql.NullInt64  `json:"width"`
	Height    sql.NullInt64  `json:"height"`
	Hash      sql.NullString `json:"hash"`
	CreatedAt time.Time      `json:"created_at"`
}

// ImageInput is an image submitted by a client. ID is nil when the image
// has been uploaded but not yet persisted; such inputs are pending and are
// matched back to the created record by URL.
type ImageInput struct {
	ID     *int64 `json:"id,omitempty"`
	URL    string `json:"url"`
	Name   string `json:"name,omitempty"`
	Width  int64  `json:"width,omitempty"`
	Height int64  `json:"height,omitempty"`
	Hash   string `json:"hash,omitempty"`
}

// Pending reports whether the input still needs an image record
func (in *ImageInput) Pending() bool {
	return in != nil && in.ID == nil
}

// CorrelationKey identifies a pending input among records created in the same call
func (in *ImageInput) CorrelationKey() string {
	return in.URL
}

// ToImage converts the input to a new image owned by userID
func (in *ImageInput) ToImage(userID int64) *Image {
	return &Image{
		UserID: userID,
		URL:    in.URL,
		Name:   sql.NullString{String: in.Name, Valid: in.Name != ""},
		Width:  sql.NullInt64{Int64: in.Width, Valid: in.Width > 0},
		Height: sql.NullInt64{Int64: in.Height, Valid: in.Height > 0},
		Hash:   sql.NullString{String: in.Hash, Valid: in.Hash != ""},
	}
}
