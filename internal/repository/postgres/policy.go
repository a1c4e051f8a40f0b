package postgres

import (
	"context"

	"sharelink-service/internal/domain/link"
	"sharelink-service/internal/domain/policy"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PolicyStore reads team and shared-folder link policies. The tables are
// written by an external configuration subsystem; this service only
// consumes snapshots.
type PolicyStore struct {
	db *DB
}

func NewPolicyStore(db *DB) *PolicyStore {
	return &PolicyStore{db: db}
}

func (s *PolicyStore) TeamPolicy(ctx context.Context, teamID uuid.UUID) (*policy.Policy, error) {
	query := `
		SELECT allowed_visibilities, forces_password
		FROM team_link_policies WHERE team_id = $1
	`

	var allowed []string
	p := &policy.Policy{}
	err := s.db.Pool.QueryRow(ctx, query, teamID).Scan(&allowed, &p.ForcesPassword)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, errFailedGetPolicy(err)
	}

	p.AllowedVisibilities = toVisibilities(allowed)
	return p, nil
}

// FolderPolicy returns the policy of the nearest enclosing shared folder
// of path, or nil when no shared folder covers it.
func (s *PolicyStore) FolderPolicy(ctx context.Context, teamID uuid.UUID, path string) (*policy.Policy, error) {
	paths := append([]string{path}, link.Ancestors(path)...)

	query := `
		SELECT allowed_visibilities, forces_password, members_only
		FROM folder_link_policies
		WHERE team_id = $1 AND folder_path = ANY($2)
		ORDER BY length(folder_path) DESC
		LIMIT 1
	`

	var allowed []string
	p := &policy.Policy{}
	err := s.db.Pool.QueryRow(ctx, query, teamID, paths).Scan(&allowed, &p.ForcesPassword, &p.MembersOnly)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, errFailedGetPolicy(err)
	}

	p.AllowedVisibilities = toVisibilities(allowed)
	return p, nil
}

func toVisibilities(values []string) []link.RequestedVisibility {
	if len(values) == 0 {
		return nil
	}
	out := make([]link.RequestedVisibility, 0, len(values))
	for _, v := range values {
		out = append(out, link.RequestedVisibility(v))
	}
	return out
}
