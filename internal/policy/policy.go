// Package policy decides who may perform privileged station operations.
// Every admin or ownership check in the service layer goes through it.
package policy

import (
	"strings"

	"github.com/undarez/camper-splatchs-sub001/internal/model"
)

// Actor identity of the caller as extracted from the access token.
// A nil *Actor is an anonymous caller.
type Actor struct {
	UserID string
	Email  string
	Role   string
}

// Policy admin role or configured admin email grants admin privilege
type Policy struct {
	adminEmails map[string]struct{}
}

// New builds a Policy; emails are compared case-insensitively
func New(adminEmails []string) *Policy {
	p := &Policy{adminEmails: make(map[string]struct{}, len(adminEmails))}
	for _, e := range adminEmails {
		e = normalizeEmail(e)
		if e != "" {
			p.adminEmails[e] = struct{}{}
		}
	}
	return p
}

// IsAdminEmail reports whether email is a configured administrator
func (p *Policy) IsAdminEmail(email string) bool {
	_, ok := p.adminEmails[normalizeEmail(email)]
	return ok
}

// IsAdmin reports whether the actor holds admin privilege
func (p *Policy) IsAdmin(a *Actor) bool {
	if a == nil || a.UserID == "" {
		return false
	}
	return a.Role == model.RoleAdmin || p.IsAdminEmail(a.Email)
}

// CanManageStation author or admin
func (p *Policy) CanManageStation(a *Actor, authorID string) bool {
	if a == nil || a.UserID == "" {
		return false
	}
	return a.UserID == authorID || p.IsAdmin(a)
}

// CanViewStation ACTIVE stations are public, others only for author or admin
func (p *Policy) CanViewStation(a *Actor, station *model.Station) bool {
	if station.Status == model.StatusActive {
		return true
	}
	return p.CanManageStation(a, station.AuthorID)
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
