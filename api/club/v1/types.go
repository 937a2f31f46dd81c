package clubv1

import "time"

// ============================================================================
// Shared messages
// ============================================================================

// ImageInput is an image attached to a club, tier or post. Id is empty for
// freshly uploaded images that still need a record.
type ImageInput struct {
	ID     *int64 `json:"id,omitempty"`
	URL    string `json:"url"`
	Name   string `json:"name,omitempty"`
	Width  int64  `json:"width,omitempty"`
	Height int64  `json:"height,omitempty"`
	Hash   string `json:"hash,omitempty"`
}

type Club struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	NSFW          bool      `json:"nsfw"`
	Billing       bool      `json:"billing"`
	Unlisted      bool      `json:"unlisted"`
	AvatarID      *int64    `json:"avatarId,omitempty"`
	CoverImageID  *int64    `json:"coverImageId,omitempty"`
	HeaderImageID *int64    `json:"headerImageId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TierAction is the single membership action offered to the caller for a tier
type TierAction struct {
	Kind        string     `json:"kind"`
	Disabled    bool       `json:"disabled,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
}

type ClubTier struct {
	ID             int64       `json:"id"`
	ClubID         int64       `json:"clubId"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	UnitAmount     int64       `json:"unitAmount"`
	Currency       string      `json:"currency"`
	MemberLimit    *int64      `json:"memberLimit,omitempty"`
	CoverImageID   *int64      `json:"coverImageId,omitempty"`
	Joinable       bool        `json:"joinable"`
	Unlisted       bool        `json:"unlisted"`
	MemberCount    int32       `json:"memberCount"`
	RemainingSpots *int32      `json:"remainingSpots,omitempty"`
	Action         *TierAction `json:"action,omitempty"`
}

type TierInput struct {
	ID               *int64      `json:"id,omitempty"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	UnitAmount       int64       `json:"unitAmount"`
	Currency         string      `json:"currency,omitempty"`
	MemberLimit      *int64      `json:"memberLimit,omitempty"`
	Joinable         bool        `json:"joinable"`
	Unlisted         bool        `json:"unlisted"`
	CoverImage       *ImageInput `json:"coverImage,omitempty"`
	RemoveCoverImage bool        `json:"removeCoverImage,omitempty"`
}

type ClubAdmin struct {
	ClubID      int64     `json:"clubId"`
	UserID      int64     `json:"userId"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ViewerRoles describes what the caller is on a club and what it may do there
type ViewerRoles struct {
	IsOwner             bool                `json:"isOwner"`
	IsModerator         bool                `json:"isModerator"`
	IsClubAdmin         bool                `json:"isClubAdmin"`
	Permissions         []string            `json:"permissions,omitempty"`
	HasActiveMembership bool                `json:"hasActiveMembership"`
	Capabilities        *ViewerCapabilities `json:"capabilities"`
}

type ViewerCapabilities struct {
	CanCreatePosts     bool `json:"canCreatePosts"`
	CanCreateResources bool `json:"canCreateResources"`
	CanViewMembersOnly bool `json:"canViewMembersOnly"`
	CanManageTiers     bool `json:"canManageTiers"`
	CanManageClub      bool `json:"canManageClub"`
	CanManageAdmins    bool `json:"canManageAdmins"`
}

type ClubMembership struct {
	ID                  int64      `json:"id"`
	UserID              int64      `json:"userId"`
	ClubID              int64      `json:"clubId"`
	ClubTierID          int64      `json:"clubTierId"`
	DowngradeClubTierID *int64     `json:"downgradeClubTierId,omitempty"`
	UnitAmount          int64      `json:"unitAmount"`
	Currency            string     `json:"currency"`
	State               string     `json:"state"`
	StartedAt           time.Time  `json:"startedAt"`
	NextBillingAt       time.Time  `json:"nextBillingAt"`
	CancelledAt         *time.Time `json:"cancelledAt,omitempty"`
	ExpiresAt           *time.Time `json:"expiresAt,omitempty"`
}

type ClubPost struct {
	ID           int64     `json:"id"`
	ClubID       int64     `json:"clubId"`
	CreatedByID  int64     `json:"createdById"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	MembersOnly  bool      `json:"membersOnly"`
	CoverImageID *int64    `json:"coverImageId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ============================================================================
// ClubService messages
// ============================================================================

// UpsertClubRequest creates a club when ID is empty and updates it otherwise
type UpsertClubRequest struct {
	ID                *int64       `json:"id,omitempty"`
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	NSFW              bool         `json:"nsfw"`
	Billing           bool         `json:"billing"`
	Unlisted          bool         `json:"unlisted"`
	Avatar            *ImageInput  `json:"avatar,omitempty"`
	CoverImage        *ImageInput  `json:"coverImage,omitempty"`
	HeaderImage       *ImageInput  `json:"headerImage,omitempty"`
	RemoveAvatar      bool         `json:"removeAvatar,omitempty"`
	RemoveCoverImage  bool         `json:"removeCoverImage,omitempty"`
	RemoveHeaderImage bool         `json:"removeHeaderImage,omitempty"`
	Tiers             []*TierInput `json:"tiers,omitempty"`
	DeleteTierIDs     []int64      `json:"deleteTierIds,omitempty"`
}

type UpsertClubResponse struct {
	Club *Club `json:"club"`
}

type GetClubRequest struct {
	ID int64 `json:"id"`
}

type GetClubResponse struct {
	Club       *Club           `json:"club"`
	Tiers      []*ClubTier     `json:"tiers"`
	Admins     []*ClubAdmin    `json:"admins,omitempty"`
	Membership *ClubMembership `json:"membership,omitempty"`
	Roles      *ViewerRoles    `json:"roles"`
}

type UpsertClubTiersRequest struct {
	ClubID        int64        `json:"clubId"`
	Tiers         []*TierInput `json:"tiers"`
	DeleteTierIDs []int64      `json:"deleteTierIds,omitempty"`
}

type UpsertClubTiersResponse struct {
	Tiers []*ClubTier `json:"tiers"`
}

type ListClubTiersRequest struct {
	ClubID int64 `json:"clubId"`
}

type ListClubTiersResponse struct {
	Tiers []*ClubTier `json:"tiers"`
}

type UpsertClubAdminRequest struct {
	ClubID      int64    `json:"clubId"`
	UserID      int64    `json:"userId"`
	Permissions []string `json:"permissions"`
}

type UpsertClubAdminResponse struct {
	Admin *ClubAdmin `json:"admin"`
}

type DeleteClubAdminRequest struct {
	ClubID int64 `json:"clubId"`
	UserID int64 `json:"userId"`
}

type DeleteClubAdminResponse struct{}

// ============================================================================
// ClubPostService messages
// ============================================================================

type ListClubPostsRequest struct {
	ClubID int64 `json:"clubId"`
	// Cursor is the id of the first post of the page; zero starts at the newest post
	Cursor int64 `json:"cursor,omitempty"`
	Limit  int32 `json:"limit,omitempty"`
}

type ListClubPostsResponse struct {
	Posts      []*ClubPost `json:"posts"`
	NextCursor int64       `json:"nextCursor,omitempty"`
}

type GetClubPostRequest struct {
	ID int64 `json:"id"`
}

type GetClubPostResponse struct {
	Post *ClubPost `json:"post"`
}

type UpsertClubPostRequest struct {
	ID               *int64      `json:"id,omitempty"`
	ClubID           int64       `json:"clubId"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	MembersOnly      bool        `json:"membersOnly"`
	CoverImage       *ImageInput `json:"coverImage,omitempty"`
	RemoveCoverImage bool        `json:"removeCoverImage,omitempty"`
}

type UpsertClubPostResponse struct {
	Post *ClubPost `json:"post"`
}

type DeleteClubPostRequest struct {
	ID int64 `json:"id"`
}

type DeleteClubPostResponse struct{}

// ============================================================================
// ClubMembershipService messages
// ============================================================================

type CreateClubMembershipRequest struct {
	ClubTierID int64 `json:"clubTierId"`
}

type UpdateClubMembershipRequest struct {
	ClubTierID int64 `json:"clubTierId"`
}

type CancelClubMembershipRequest struct {
	ClubID int64 `json:"clubId"`
}

type RestoreClubMembershipRequest struct {
	ClubID int64 `json:"clubId"`
}

type GetClubMembershipOnClubRequest struct {
	ClubID int64 `json:"clubId"`
}

// ClubMembershipResponse carries the membership after a call. Membership is
// empty when the caller has none.
type ClubMembershipResponse struct {
	Membership *ClubMembership `json:"membership,omitempty"`
}
