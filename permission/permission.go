package permission

import (
	"errors"
	"fmt"
	"strings"
)

// Action is one of the four CRUD verbs a grant can cover.
type Action string

const (
	ActionRead   Action = "READ"
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// AdminRole bypasses every permission lookup.
const AdminRole = "ROLE_ADMIN"

var (
	ErrUnknownAction        = errors.New("unknown action")
	ErrDuplicateResourceKey = errors.New("duplicate resource key")
	ErrEmptyResourceKey     = errors.New("empty resource key")
)

// ParseAction accepts the action name in any case.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToUpper(strings.TrimSpace(s))) {
	case ActionRead:
		return ActionRead, nil
	case ActionCreate:
		return ActionCreate, nil
	case ActionUpdate:
		return ActionUpdate, nil
	case ActionDelete:
		return ActionDelete, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Grants holds the four independent CRUD flags for one resource.
type Grants struct {
	CanRead   bool `json:"canRead"`
	CanCreate bool `json:"canCreate"`
	CanUpdate bool `json:"canUpdate"`
	CanDelete bool `json:"canDelete"`
}

// AllGrants is what an administrator effectively holds on every resource.
func AllGrants() *Grants {
	return &Grants{CanRead: true, CanCreate: true, CanUpdate: true, CanDelete: true}
}

// Allows reports the flag for action. A nil Grants allows nothing.
func (g *Grants) Allows(action Action) bool {
	if g == nil {
		return false
	}
	switch action {
	case ActionRead:
		return g.CanRead
	case ActionCreate:
		return g.CanCreate
	case ActionUpdate:
		return g.CanUpdate
	case ActionDelete:
		return g.CanDelete
	}
	return false
}

// Merge ORs other into g.
func (g *Grants) Merge(other *Grants) {
	if other == nil {
		return
	}
	g.CanRead = g.CanRead || other.CanRead
	g.CanCreate = g.CanCreate || other.CanCreate
	g.CanUpdate = g.CanUpdate || other.CanUpdate
	g.CanDelete = g.CanDelete || other.CanDelete
}
