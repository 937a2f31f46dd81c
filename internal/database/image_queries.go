package database

import (
	"context"
	"fmt"

	"github.com/parsascontentcorner/clubserver/internal/models"
)

// CreateImages inserts images in order and fills in their IDs.
// It returns the created records keyed by URL.
func (q *Queries) CreateImages(ctx context.Context, images []*models.Image) (map[string]*models.Image, error) {
	query := `
		INSERT INTO images (user_id, url, name, width, height, hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	byURL := make(map[string]*models.Image, len(images))
	for _, img := range images {
		err := q.q.QueryRowContext(ctx, query,
			img.UserID,
			img.URL,
			img.Name,
			img.Width,
			img.Height,
			img.Hash,
		).Scan(&img.ID, &img.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create image: %w", err)
		}
		byURL[img.URL] = img
	}

	return byURL, nil
}
