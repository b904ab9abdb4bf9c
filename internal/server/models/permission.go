package models

import (
	"fmt"
	"strings"
)

// Operation is the capability a request needs on a project.
type Operation string

const (
	OpRead  Operation = "read"
	OpWrite Operation = "write"
)

// PermissionLevel is the capability tier granted on a project.
// PermissionReadWrite is a superset of the other two.
type PermissionLevel string

const (
	PermissionRead      PermissionLevel = "read"
	PermissionWrite     PermissionLevel = "write"
	PermissionReadWrite PermissionLevel = "read-write"
)

// ParsePermissionLevel accepts the wire spelling of a level.
func ParsePermissionLevel(s string) (PermissionLevel, error) {
	switch PermissionLevel(strings.ToLower(strings.TrimSpace(s))) {
	case PermissionRead:
		return PermissionRead, nil
	case PermissionWrite:
		return PermissionWrite, nil
	case PermissionReadWrite:
		return PermissionReadWrite, nil
	default:
		return "", fmt.Errorf("unknown permission level %q", s)
	}
}

// Allows reports whether the level includes op.
func (p PermissionLevel) Allows(op Operation) bool {
	switch p {
	case PermissionReadWrite:
		return op == OpRead || op == OpWrite
	case PermissionRead:
		return op == OpRead
	case PermissionWrite:
		return op == OpWrite
	default:
		return false
	}
}

// Grant gives one user a permission level on one project. The project owner
// never holds a grant.
type Grant struct {
	ProjectID  string
	UserID     string
	Email      string
	Permission PermissionLevel
}
