package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Club represents a creator club
type Club struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"` // Owner
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	NSFW          bool          `json:"nsfw"`
	Billing       bool          `json:"billing"`
	Unlisted      bool          `json:"unlisted"`
	AvatarID      sql.NullInt64 `json:"avatar_id"`
	CoverImageID  sql.NullInt64 `json:"cover_image_id"`
	HeaderImageID sql.NullInt64 `json:"header_image_id"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ClubAdminPermission is a capability granted to a club admin
type ClubAdminPermission string

// Club admin permissions
const (
	PermissionManageMemberships ClubAdminPermission = "ManageMemberships"
	PermissionManageTiers       ClubAdminPermission = "ManageTiers"
	PermissionManagePosts       ClubAdminPermission = "ManagePosts"
	PermissionManageClub        ClubAdminPermission = "ManageClub"
	PermissionManageResources   ClubAdminPermission = "ManageResources"
	PermissionViewRevenue       ClubAdminPermission = "ViewRevenue"
	PermissionWithdrawRevenue   ClubAdminPermission = "WithdrawRevenue"
)

// AllClubAdminPermissions lists every permission, in display order
var AllClubAdminPermissions = []ClubAdminPermission{
	PermissionManageMemberships,
	PermissionManageTiers,
	PermissionManagePosts,
	PermissionManageClub,
	PermissionManageResources,
	PermissionViewRevenue,
	PermissionWithdrawRevenue,
}

// Valid reports whether p is a known permission
func (p ClubAdminPermission) Valid() bool {
	for _, known := range AllClubAdminPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// ClubAdmin grants a user a set of permissions on a club
type ClubAdmin struct {
	ClubID      int64          `json:"club_id"`
	UserID      int64          `json:"user_id"`
	Permissions pq.StringArray `json:"permissions"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Has reports whether the admin holds the permission
func (a *ClubAdmin) Has(p ClubAdminPermission) bool {
	if a == nil {
		return false
	}
	for _, granted := range a.Permissions {
		if granted == string(p) {
			return true
		}
	}
	return false
}
