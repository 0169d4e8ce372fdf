// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access
	RoleAdmin UserRole = "admin"

	// Can manage posts and moderate comments
	RoleModerator UserRole = "moderator"

	// Default role for standard registered users
	RoleUser UserRole = "user"
)

// IsValid reports whether the value is one of the closed role set.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-30) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 30
	case RoleModerator:
		return 20
	case RoleUser:
		return 10
	default:
		return 0
	}
}

// # Authorization Gate

// Action identifies a privileged operation checked against the role table.
type Action string

const (
	ActionPostCreate      Action = "post:create"
	ActionPostUpdate      Action = "post:update"
	ActionPostDelete      Action = "post:delete"
	ActionCommentModerate Action = "comment:moderate"
	ActionUserList        Action = "user:list"
	ActionRoleChange      Action = "user:role_change"
)

// minimumRole is the table backing the authorization gate. Absent actions
// deny by default.
var minimumRole = map[Action]UserRole{
	ActionPostCreate:      RoleModerator,
	ActionPostUpdate:      RoleModerator,
	ActionPostDelete:      RoleModerator,
	ActionCommentModerate: RoleModerator,
	ActionUserList:        RoleModerator,
	ActionRoleChange:      RoleAdmin,
}

// Can reports whether the role is permitted to perform the action.
//
// This is a pure function of (role, action). Ownership-based allowances
// (a user deleting their own comment) are resolved in the owning service —
// the gate covers only role-derived permission.
func (r UserRole) Can(action Action) bool {
	required, known := minimumRole[action]
	if !known {
		return false
	}
	return r.AtLeast(required)
}
