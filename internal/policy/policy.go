// Package policy decides whether the actor of a request may perform an operation
// on a resource. Every route and service consults the same table.
package policy

import (
	"errors"

	"office-panel/internal/models"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
)

type Resource string

const (
	Users          Resource = "users"
	Devices        Resource = "devices"
	Notices        Resource = "notices"
	Galleries      Resource = "galleries"
	Photos         Resource = "photos"
	Charters       Resource = "charters"
	Contacts       Resource = "contacts"
	Tickers        Resource = "tickers"
	ActionRequests Resource = "action_requests"
	AuditLogs      Resource = "audit_logs"
	Reports        Resource = "reports"
	Dashboard      Resource = "dashboard"
)

type Operation string

const (
	Read      Operation = "read"
	ReadAll   Operation = "read_all"
	Create    Operation = "create"
	Update    Operation = "update"
	Delete    Operation = "delete"
	Heartbeat Operation = "heartbeat"
	Recommend Operation = "recommend"
	Approve   Operation = "approve"
	Publish   Operation = "publish"
	Complete  Operation = "complete"
)

// Rule is the predicate applied to an operation.
type Rule int

const (
	// Public allows anonymous callers.
	Public Rule = iota
	// Authenticated allows any signed in user.
	Authenticated
	// Ownership allows privileged users and the creator of the target.
	Ownership
	// Role allows admins and superusers only.
	Role
)

func (r Rule) String() string {
	switch r {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case Ownership:
		return "ownership"
	case Role:
		return "role"
	default:
		return "unknown"
	}
}

type key struct {
	resource  Resource
	operation Operation
}

// table is the single place where the rule for each operation is chosen.
// Pairs missing from the table fall back to Role.
var table = map[key]Rule{
	{Users, Read}:   Role,
	{Users, Create}: Role,
	{Users, Update}: Role,
	{Users, Delete}: Role,

	{Devices, Read}:      Authenticated,
	{Devices, Heartbeat}: Authenticated,
	{Devices, Create}:    Role,
	{Devices, Update}:    Role,
	{Devices, Delete}:    Role,

	{Notices, Read}:      Public,
	{Notices, Create}:    Authenticated,
	{Notices, Recommend}: Authenticated,
	{Notices, Update}:    Role,
	{Notices, Delete}:    Role,
	{Notices, Approve}:   Role,
	{Notices, Publish}:   Role,

	{Galleries, Read}:   Public,
	{Galleries, Create}: Authenticated,
	{Galleries, Update}: Role,
	{Galleries, Delete}: Role,

	{Photos, Create}: Ownership,
	{Photos, Delete}: Ownership,

	{Charters, Read}:   Public,
	{Charters, Create}: Authenticated,
	{Charters, Update}: Role,
	{Charters, Delete}: Role,

	{Contacts, Read}:   Authenticated,
	{Contacts, Create}: Authenticated,
	{Contacts, Update}: Role,
	{Contacts, Delete}: Role,

	{Tickers, Read}:    Public,
	{Tickers, ReadAll}: Authenticated,
	{Tickers, Create}:  Authenticated,
	{Tickers, Update}:  Ownership,
	{Tickers, Delete}:  Ownership,

	{ActionRequests, Create}:   Authenticated,
	{ActionRequests, Read}:     Role,
	{ActionRequests, Complete}: Role,
	{ActionRequests, Delete}:   Role,

	{AuditLogs, Read}: Role,
	{Reports, Read}:   Role,
	{Dashboard, Read}: Authenticated,
}

// RuleFor returns the rule configured for an operation.
func RuleFor(res Resource, op Operation) Rule {
	if rule, ok := table[key{res, op}]; ok {
		return rule
	}
	return Role
}

// IsPrivileged reports whether the Role policy grants access to user.
func IsPrivileged(user *models.User) bool {
	if user == nil {
		return false
	}
	return user.Role == models.RoleAdmin || user.IsSuperuser
}

// IsOwner reports whether the Ownership policy grants access to user for an
// object created by ownerID.
func IsOwner(user *models.User, ownerID *uint) bool {
	if IsPrivileged(user) {
		return true
	}
	return user != nil && ownerID != nil && *ownerID == user.ID
}

// Check evaluates the rule for (res, op). ownerID is the target's creator and is
// only consulted by Ownership rules; pass nil when no target is loaded yet.
func Check(user *models.User, res Resource, op Operation, ownerID *uint) error {
	rule := RuleFor(res, op)
	if rule == Public {
		return nil
	}
	if user == nil {
		return ErrUnauthenticated
	}
	switch rule {
	case Authenticated:
		return nil
	case Ownership:
		if IsOwner(user, ownerID) {
			return nil
		}
	case Role:
		if IsPrivileged(user) {
			return nil
		}
	}
	return ErrForbidden
}

// Precheck is the route level gate. Ownership rules only require a signed in user
// here because the target has not been loaded; the service finishes the check.
func Precheck(user *models.User, res Resource, op Operation) error {
	if RuleFor(res, op) == Ownership {
		if user == nil {
			return ErrUnauthenticated
		}
		return nil
	}
	return Check(user, res, op, nil)
}
