package repository

import (
	"context"
	"time"

	"sharelink-service/internal/domain/link"
	"sharelink-service/internal/domain/policy"

	"github.com/google/uuid"
)

// Provider-side interfaces the sharing and quota services depend on.
// Concrete implementations live in repository/postgres and
// repository/memory.

// OwnerCursor is the repository-level position in an owner's link set,
// ordered by (CreatedAt, LinkID). The opaque wire cursor wraps it
// together with a generation marker.
type OwnerCursor struct {
	CreatedAt time.Time
	LinkID    string
}

// LinkPage is one page of an owner-scoped listing. Generation is the
// repository's ordering generation at read time; it changes whenever a
// compacting rewrite shifts the stable ordering beneath open cursors.
type LinkPage struct {
	Records    []*link.Record
	HasMore    bool
	Generation uint64
}

type LinkRepository interface {
	// Create persists a new link. For the legacy family the write is
	// conditional on the owning path: a concurrent or prior create on the
	// same path returns the existing record with created=false instead of
	// a duplicate. For the settings family a live link by the same owner
	// on the same path is a conflict.
	Create(ctx context.Context, rec *link.Record) (out *link.Record, created bool, err error)

	GetByURL(ctx context.Context, url string) (*link.Record, error)

	// GetByPath returns the live legacy-family link on the exact path.
	GetByPath(ctx context.Context, teamID uuid.UUID, path string) (*link.Record, error)

	// ListByPaths returns every live link whose owning path is one of the
	// given paths, in no particular order.
	ListByPaths(ctx context.Context, teamID uuid.UUID, paths []string) ([]*link.Record, error)

	// ListByOwner pages through an owner's links ordered by
	// (CreatedAt, LinkID). A non-nil cursor whose anchor record no longer
	// exists yields a cursor-reset error rather than a silently shifted
	// page.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, after *OwnerCursor, limit int) (*LinkPage, error)

	UpdateSettings(ctx context.Context, rec *link.Record) (*link.Record, error)

	Delete(ctx context.Context, url string) error

	// Generation reports the current ordering generation.
	Generation(ctx context.Context) (uint64, error)
}

type QuotaRepository interface {
	// GetBatch returns the overrides present for the given members.
	// Members without an override are simply absent from the result.
	GetBatch(ctx context.Context, memberIDs []uuid.UUID) (map[uuid.UUID]uint32, error)

	Upsert(ctx context.Context, memberID uuid.UUID, quotaGB uint32) error

	// Remove deletes a member's override. Removing an absent override is
	// not an error.
	Remove(ctx context.Context, memberID uuid.UUID) error
}

// PolicyStore exposes read-only policy snapshots from external
// configuration. This core never mutates policies.
type PolicyStore interface {
	TeamPolicy(ctx context.Context, teamID uuid.UUID) (*policy.Policy, error)

	// FolderPolicy returns the policy of the nearest enclosing shared
	// folder of path, or nil when no shared folder covers it.
	FolderPolicy(ctx context.Context, teamID uuid.UUID, path string) (*policy.Policy, error)
}

// PathEntry describes an existing filesystem entry.
type PathEntry struct {
	Path  string
	IsDir bool
}

// PathResolver answers existence queries against the team namespace,
// which is owned by an external metadata subsystem.
type PathResolver interface {
	// Stat returns the entry at path or a not-found error.
	Stat(ctx context.Context, teamID uuid.UUID, path string) (*PathEntry, error)
}

// MemberDirectory answers team membership queries.
type MemberDirectory interface {
	Exists(ctx context.Context, teamID, memberID uuid.UUID) (bool, error)
}
