package grpc

import (
	"database/sql"
	"time"

	clubv1 "github.com/parsascontentcorner/clubserver/api/club/v1"
	"github.com/parsascontentcorner/clubserver/internal/models"
	"github.com/parsascontentcorner/clubserver/internal/policy"
	"github.com/parsascontentcorner/clubserver/internal/service"
)

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}

func toClub(c *models.Club) *clubv1.Club {
	if c == nil {
		return nil
	}
	return &clubv1.Club{
		ID:            c.ID,
		UserID:        c.UserID,
		Name:          c.Name,
		Description:   c.Description,
		NSFW:          c.NSFW,
		Billing:       c.Billing,
		Unlisted:      c.Unlisted,
		AvatarID:      nullInt(c.AvatarID),
		CoverImageID:  nullInt(c.CoverImageID),
		HeaderImageID: nullInt(c.HeaderImageID),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func toTier(t *models.TierWithCount) *clubv1.ClubTier {
	out := &clubv1.ClubTier{
		ID:           t.ID,
		ClubID:       t.ClubID,
		Name:         t.Name,
		Description:  t.Description,
		UnitAmount:   t.UnitAmount,
		Currency:     t.Currency,
		MemberLimit:  nullInt(t.MemberLimit),
		CoverImageID: nullInt(t.CoverImageID),
		Joinable:     t.Joinable,
		Unlisted:     t.Unlisted,
		MemberCount:  int32(t.MemberCount),
	}
	if remaining, limited := t.RemainingSpots(); limited {
		spots := int32(remaining)
		out.RemainingSpots = &spots
	}
	return out
}

func toTiers(tiers []*models.TierWithCount) []*clubv1.ClubTier {
	out := make([]*clubv1.ClubTier, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, toTier(t))
	}
	return out
}

func toTierViews(views []service.TierView) []*clubv1.ClubTier {
	out := make([]*clubv1.ClubTier, 0, len(views))
	for _, v := range views {
		tier := toTier(v.Tier)
		tier.Action = toTierAction(v.Action)
		out = append(out, tier)
	}
	return out
}

func toTierAction(a policy.TierAction) *clubv1.TierAction {
	return &clubv1.TierAction{
		Kind:        string(a.Kind),
		Disabled:    a.Disabled,
		ScheduledAt: a.ScheduledAt,
	}
}

func toAdmin(a *models.ClubAdmin) *clubv1.ClubAdmin {
	return &clubv1.ClubAdmin{
		ClubID:      a.ClubID,
		UserID:      a.UserID,
		Permissions: []string(a.Permissions),
		CreatedAt:   a.CreatedAt,
	}
}

func toRoles(r policy.Roles) *clubv1.ViewerRoles {
	caps := r.Capabilities()
	out := &clubv1.ViewerRoles{
		IsOwner:             r.IsOwner,
		IsModerator:         r.IsModerator,
		IsClubAdmin:         r.IsClubAdmin,
		HasActiveMembership: r.HasActiveMembership,
		Capabilities: &clubv1.ViewerCapabilities{
			CanCreatePosts:     caps.CreatePosts,
			CanCreateResources: caps.CreateResources,
			CanViewMembersOnly: caps.ViewMembersOnly,
			CanManageTiers:     caps.ManageTiers,
			CanManageClub:      caps.ManageClub,
			CanManageAdmins:    caps.ManageAdmins,
		},
	}
	for _, p := range r.Permissions {
		out.Permissions = append(out.Permissions, string(p))
	}
	return out
}

func toMembership(m *models.ClubMembership, now time.Time) *clubv1.ClubMembership {
	if m == nil {
		return nil
	}
	return &clubv1.ClubMembership{
		ID:                  m.ID,
		UserID:              m.UserID,
		ClubID:              m.ClubID,
		ClubTierID:          m.ClubTierID,
		DowngradeClubTierID: nullInt(m.DowngradeClubTierID),
		UnitAmount:          m.UnitAmount,
		Currency:            m.Currency,
		State:               string(m.State(now)),
		StartedAt:           m.StartedAt,
		NextBillingAt:       m.NextBillingAt,
		CancelledAt:         nullTime(m.CancelledAt),
		ExpiresAt:           nullTime(m.ExpiresAt),
	}
}

func toPost(p *models.ClubPost) *clubv1.ClubPost {
	return &clubv1.ClubPost{
		ID:           p.ID,
		ClubID:       p.ClubID,
		CreatedByID:  p.CreatedByID,
		Title:        p.Title,
		Description:  p.Description,
		MembersOnly:  p.MembersOnly,
		CoverImageID: nullInt(p.CoverImageID),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func fromImage(in *clubv1.ImageInput) *models.ImageInput {
	if in == nil {
		return nil
	}
	return &models.ImageInput{
		ID:     in.ID,
		URL:    in.URL,
		Name:   in.Name,
		Width:  in.Width,
		Height: in.Height,
		Hash:   in.Hash,
	}
}

func fromTierInputs(in []*clubv1.TierInput) []service.TierInput {
	out := make([]service.TierInput, 0, len(in))
	for _, t := range in {
		if t == nil {
			continue
		}
		out = append(out, service.TierInput{
			ID:               t.ID,
			Name:             t.Name,
			Description:      t.Description,
			UnitAmount:       t.UnitAmount,
			Currency:         t.Currency,
			MemberLimit:      t.MemberLimit,
			Joinable:         t.Joinable,
			Unlisted:         t.Unlisted,
			CoverImage:       fromImage(t.CoverImage),
			RemoveCoverImage: t.RemoveCoverImage,
		})
	}
	return out
}

func fromPermissions(in []string) []models.ClubAdminPermission {
	out := make([]models.ClubAdminPermission, 0, len(in))
	for _, p := range in {
		out = append(out, models.ClubAdminPermission(p))
	}
	return out
}
