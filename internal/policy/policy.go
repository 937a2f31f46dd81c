// Package policy decides what a viewer may do inside a club.
//
// Every rule is expressed as a capability check on Roles so that the
// transport, the services and any client deriving UI state share one
// definition.
package policy

import (
	"fmt"
	"time"

	"github.com/parsascontentcorner/clubserver/internal/errs"
	"github.com/parsascontentcorner/clubserver/internal/models"
)

// Action is a capability that can be checked against Roles
type Action string

// Actions
const (
	ActionCreatePost      Action = "create_post"
	ActionCreateResource  Action = "create_resource"
	ActionEditPost        Action = "edit_post"
	ActionDeletePost      Action = "delete_post"
	ActionViewMembersOnly Action = "view_members_only"
	ActionManageTiers     Action = "manage_tiers"
	ActionManageClub      Action = "manage_club"
	ActionManageAdmins    Action = "manage_admins"
)

// Target carries the facts about the object an action applies to.
// Only post actions look at it.
type Target struct {
	AuthorID int64
}

// Roles are the facts about a viewer's relationship to one club
type Roles struct {
	UserID              int64
	IsOwner             bool
	IsModerator         bool
	IsClubAdmin         bool
	Permissions         []models.ClubAdminPermission
	HasActiveMembership bool
}

// RolesFor builds the roles of viewer on club at now. admin and membership may be nil.
func RolesFor(viewer *models.Viewer, club *models.Club, admin *models.ClubAdmin, membership *models.ClubMembership, now time.Time) Roles {
	r := Roles{
		UserID:      viewer.ID(),
		IsModerator: viewer.Moderator(),
	}
	if club != nil && viewer != nil {
		r.IsOwner = club.UserID == viewer.UserID
	}
	if admin != nil {
		r.IsClubAdmin = true
		for _, p := range admin.Permissions {
			r.Permissions = append(r.Permissions, models.ClubAdminPermission(p))
		}
	}
	r.HasActiveMembership = membership.GrantsAccess(now)
	return r
}

// HasPermission reports whether the viewer holds p, either as owner or through an admin grant
func (r Roles) HasPermission(p models.ClubAdminPermission) bool {
	if r.IsOwner {
		return true
	}
	for _, granted := range r.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}

// Can reports whether the roles allow action on target
func (r Roles) Can(action Action, target Target) bool {
	switch action {
	case ActionCreatePost:
		return r.IsOwner || r.IsModerator || r.HasPermission(models.PermissionManagePosts)
	case ActionCreateResource:
		return r.IsOwner || r.IsClubAdmin
	case ActionEditPost, ActionDeletePost:
		isAuthor := r.UserID != 0 && target.AuthorID == r.UserID
		return isAuthor || r.IsOwner || r.IsModerator || r.HasPermission(models.PermissionManagePosts)
	case ActionViewMembersOnly:
		return r.IsModerator || r.IsOwner || r.HasActiveMembership || r.IsClubAdmin
	case ActionManageTiers:
		return r.IsOwner || r.IsModerator || r.HasPermission(models.PermissionManageTiers)
	case ActionManageClub:
		return r.IsOwner || r.IsModerator || r.HasPermission(models.PermissionManageClub)
	case ActionManageAdmins:
		return r.IsOwner || r.IsModerator
	default:
		return false
	}
}

// Capabilities are the club-wide actions a viewer may take, for clients that
// enable or hide controls
type Capabilities struct {
	CreatePosts     bool
	CreateResources bool
	ViewMembersOnly bool
	ManageTiers     bool
	ManageClub      bool
	ManageAdmins    bool
}

// Capabilities evaluates every club-wide action with Can
func (r Roles) Capabilities() Capabilities {
	return Capabilities{
		CreatePosts:     r.Can(ActionCreatePost, Target{}),
		CreateResources: r.Can(ActionCreateResource, Target{}),
		ViewMembersOnly: r.Can(ActionViewMembersOnly, Target{}),
		ManageTiers:     r.Can(ActionManageTiers, Target{}),
		ManageClub:      r.Can(ActionManageClub, Target{}),
		ManageAdmins:    r.Can(ActionManageAdmins, Target{}),
	}
}

// Require returns an authorization error when the roles do not allow action
func (r Roles) Require(action Action, target Target) error {
	if r.Can(action, target) {
		return nil
	}
	return errs.Authorization(fmt.Sprintf("you are not allowed to %s in this club", describe(action)))
}

func describe(action Action) string {
	switch action {
	case ActionCreatePost:
		return "create posts"
	case ActionCreateResource:
		return "create resources"
	case ActionEditPost:
		return "edit this post"
	case ActionDeletePost:
		return "delete this post"
	case ActionViewMembersOnly:
		return "view members only content"
	case ActionManageTiers:
		return "manage tiers"
	case ActionManageClub:
		return "manage this club"
	case ActionManageAdmins:
		return "manage admins"
	default:
		return string(action)
	}
}
