// Package role defines the closed set of actor roles and the resolved actor
// carried by every engine call.
package role

import (
	"strings"

	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
)

type Role string

const (
	SuperAdmin  Role = "super_admin"
	BranchAdmin Role = "branch_admin"
	Reception   Role = "reception"
	Barber      Role = "barber"
	Client      Role = "client"
)

// All lists every role, in descending order of authority.
var All = []Role{SuperAdmin, BranchAdmin, Reception, Barber, Client}

// Parse maps a stored or claimed role string onto the enum.
func Parse(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r.Valid() {
		return r, nil
	}
	return "", httperr.ErrBusiness("invalid_role")
}

func (r Role) Valid() bool {
	switch r {
	case SuperAdmin, BranchAdmin, Reception, Barber, Client:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Admin reports whether r carries administrative authority.
func (r Role) Admin() bool {
	return r == SuperAdmin || r == BranchAdmin
}

// Staff reports whether r belongs to the shop team.
func (r Role) Staff() bool {
	return r.Valid() && r != Client
}

// Set is an allow-list of roles.
type Set map[Role]bool

func NewSet(roles ...Role) Set {
	s := make(Set, len(roles))
	for _, r := range roles {
		s[r] = true
	}
	return s
}

func (s Set) Has(r Role) bool {
	return s[r]
}

var (
	Admins = NewSet(SuperAdmin, BranchAdmin)
	Staff  = NewSet(SuperAdmin, BranchAdmin, Reception, Barber)
)

// Actor is the already-authenticated caller of an operation.
type Actor struct {
	ID           uint
	BarbershopID uint
	Name         string
	Role         Role
}

// Require returns Forbidden unless the actor's role is in allowed.
func (a Actor) Require(allowed Set) error {
	if !allowed.Has(a.Role) {
		return httperr.ErrBusiness(httperr.CodeForbidden)
	}
	return nil
}

// Identity is the label stamped on verification and review fields.
func (a Actor) Identity() string {
	if a.Name != "" {
		return a.Name
	}
	return string(a.Role)
}
