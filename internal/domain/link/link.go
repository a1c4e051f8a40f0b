package link

import (
	"time"

	"github.com/google/uuid"
)

// Family identifies which identity scheme a shared link belongs to.
// Legacy links are keyed by their owning path (one live link per path);
// settings links are keyed by URL and can coexist on the same path.
type Family string

const (
	FamilyLegacy   Family = "legacy"
	FamilySettings Family = "settings"
)

// RequestedVisibility is the access level the link owner asked for.
// The enforced level is computed by the visibility resolver and can be
// stricter than what was requested.
type RequestedVisibility string

const (
	RequestedPublic   RequestedVisibility = "public"
	RequestedTeamOnly RequestedVisibility = "team_only"
	RequestedPassword RequestedVisibility = "password"
)

func (v RequestedVisibility) Valid() bool {
	switch v {
	case RequestedPublic, RequestedTeamOnly, RequestedPassword:
		return true
	}
	return false
}

// Record is a persisted shared link.
type Record struct {
	ID           string
	URL          string
	Family       Family
	OwningPath   string
	OwnerID      uuid.UUID
	TeamID       uuid.UUID
	Requested    RequestedVisibility
	PasswordHash string
	ExpiresAt    *time.Time
	CreatedAt    time.Time
}

// Expired reports whether the link has an expiration in the past.
func (r *Record) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}

// HasPassword reports whether accessing the link requires its password.
func (r *Record) HasPassword() bool {
	return r.PasswordHash != ""
}

// Settings carries the owner-settable fields for create and modify
// operations. Nil fields are left unchanged on modify and defaulted on
// create.
type Settings struct {
	RequestedVisibility *RequestedVisibility
	LinkPassword        *string
	ExpiresAt           *time.Time
}
