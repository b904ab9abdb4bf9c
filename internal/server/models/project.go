package models

import "time"

// Project is a named collection of files owned by one user.
// (Name, OwnerID) is unique; LinkID is assigned on the first share request
// and is stable afterwards.
type Project struct {
	ID               string
	Name             string
	OwnerID          string
	LinkID           string
	PublicAccess     bool
	PublicPermission PermissionLevel
	CreatedAt        time.Time
}

// HasLink reports whether a share link was generated for the project.
func (p *Project) HasLink() bool {
	return p.LinkID != ""
}

// Role describes how a user relates to a project in listings.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleGrant  Role = "grant"
	RolePublic Role = "public"
)
