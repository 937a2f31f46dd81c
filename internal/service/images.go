package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/parsascontentcorner/clubserver/internal/errs"
	"github.com/parsascontentcorner/clubserver/internal/models"
)

// createPendingImages persists every input that has no id yet, owned by ownerID.
// Inputs sharing a URL produce one record. The result is keyed by URL.
func createPendingImages(ctx context.Context, q Queries, ownerID int64, inputs ...*models.ImageInput) (map[string]*models.Image, error) {
	seen := make(map[string]bool)
	var pending []*models.Image

	for _, in := range inputs {
		if !in.Pending() {
			continue
		}
		if in.URL == "" {
			return nil, errs.BadRequest("image url is required")
		}
		key := in.CorrelationKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		pending = append(pending, in.ToImage(ownerID))
	}

	if len(pending) == 0 {
		return map[string]*models.Image{}, nil
	}

	created, err := q.CreateImages(ctx, pending)
	if err != nil {
		return nil, fmt.Errorf("failed to create images: %w", err)
	}
	return created, nil
}

// resolveImage returns the image id an input refers to: its own id when set,
// otherwise the record created for its URL in the same call
func resolveImage(in *models.ImageInput, created map[string]*models.Image) (sql.NullInt64, error) {
	if in == nil {
		return sql.NullInt64{}, nil
	}
	if in.ID != nil {
		return sql.NullInt64{Int64: *in.ID, Valid: true}, nil
	}

	img, ok := created[in.CorrelationKey()]
	if !ok {
		return sql.NullInt64{}, fmt.Errorf("image %q was not created", in.URL)
	}
	return sql.NullInt64{Int64: img.ID, Valid: true}, nil
}
