// Package policy holds the role and ownership rules for every protected action.
package policy

import (
	"fmt"

	"ecotrack/internal/domain/entity"
	"ecotrack/pkg/errors"
)

type Action string

const (
	ReportCreate   Action = "report:create"
	ReportClaim    Action = "report:claim"
	ReportComplete Action = "report:complete"
	ReportDelete   Action = "report:delete"
	ProfileUpdate  Action = "profile:update"
	NgoModerate    Action = "ngo:moderate"
	UserManage     Action = "user:manage"
	ScannerInspect Action = "scanner:inspect"
)

// Actor is the authenticated caller.
type Actor struct {
	ID   string
	Role entity.Role
}

type rule struct {
	roles []entity.Role
	// owner, when set, must hold for the resource passed to Authorize.
	owner func(actor Actor, resource interface{}) bool
}

var rules = map[Action]rule{
	ReportCreate: {roles: []entity.Role{entity.RoleUser, entity.RoleNGO, entity.RoleAdmin}},
	ReportClaim:  {roles: []entity.Role{entity.RoleNGO, entity.RoleAdmin}},
	ReportComplete: {
		roles: []entity.Role{entity.RoleNGO, entity.RoleAdmin},
		owner: func(actor Actor, resource interface{}) bool {
			report, ok := resource.(*entity.Report)
			return ok && report.AssignedTo() == actor.ID
		},
	},
	ReportDelete:   {roles: []entity.Role{entity.RoleAdmin}},
	ProfileUpdate:  {roles: []entity.Role{entity.RoleUser, entity.RoleAdmin}},
	NgoModerate:    {roles: []entity.Role{entity.RoleAdmin}},
	UserManage:     {roles: []entity.Role{entity.RoleAdmin}},
	ScannerInspect: {roles: []entity.Role{entity.RoleAdmin}},
}

// Authorize returns a Forbidden AppError when actor may not perform action.
// A nil resource checks the role part only.
func Authorize(actor Actor, action Action, resource interface{}) error {
	r, ok := rules[action]
	if !ok {
		return errors.Forbidden(fmt.Sprintf("unknown action %q", action), nil)
	}
	if !hasRole(r.roles, actor.Role) {
		return errors.Forbidden(fmt.Sprintf("role %q may not perform %s", actor.Role, action), nil)
	}
	if resource != nil && r.owner != nil && !r.owner(actor, resource) {
		return errors.Forbidden("you are not allowed to modify this resource", nil)
	}
	return nil
}

// Allows reports whether role passes the role part of action.
func Allows(role entity.Role, action Action) bool {
	r, ok := rules[action]
	return ok && hasRole(r.roles, role)
}

func hasRole(roles []entity.Role, role entity.Role) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}
