package postgres

import (
	"context"

	"sharelink-service/internal/domain/link"
	"sharelink-service/internal/repository"
	apperrors "sharelink-service/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const linkColumns = "id, url, family, owning_path, owner_id, team_id, requested_visibility, password_hash, expires_at, created_at"

type LinkRepository struct {
	db *DB
}

func NewLinkRepository(db *DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// Create inserts a link with conditional-write semantics. The legacy
// family relies on a partial unique index over (team_id, owning_path):
// a concurrent create on the same path loses the insert and reads back
// the winner, so two live legacy records can never exist for one path.
func (r *LinkRepository) Create(ctx context.Context, rec *link.Record) (*link.Record, bool, error) {
	query := `
		INSERT INTO shared_links (` + linkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT DO NOTHING
		RETURNING ` + linkColumns + `
	`

	row := r.db.Pool.QueryRow(ctx, query,
		rec.ID, rec.URL, rec.Family, rec.OwningPath, rec.OwnerID, rec.TeamID,
		rec.Requested, rec.PasswordHash, rec.ExpiresAt, rec.CreatedAt,
	)

	out, err := scanLink(row)
	if err == nil {
		return out, true, nil
	}
	if err != pgx.ErrNoRows {
		return nil, false, errFailedCreateLink(err)
	}

	// The conditional insert lost. For the legacy family that means a
	// live link already covers the path; hand it back (idempotent
	// create). For the settings family it is a conflict.
	if rec.Family == link.FamilyLegacy {
		existing, err := r.GetByPath(ctx, rec.TeamID, rec.OwningPath)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	return nil, false, apperrors.Conflict(errLinkExists)
}

func (r *LinkRepository) GetByURL(ctx context.Context, url string) (*link.Record, error) {
	query := `SELECT ` + linkColumns + ` FROM shared_links WHERE url = $1`

	rec, err := scanLink(r.db.Pool.QueryRow(ctx, query, url))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errLinkNotFound)
		}
		return nil, errFailedGetLink(err)
	}
	return rec, nil
}

func (r *LinkRepository) GetByPath(ctx context.Context, teamID uuid.UUID, path string) (*link.Record, error) {
	query := `
		SELECT ` + linkColumns + ` FROM shared_links
		WHERE team_id = $1 AND owning_path = $2 AND family = $3
	`

	rec, err := scanLink(r.db.Pool.QueryRow(ctx, query, teamID, path, link.FamilyLegacy))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errLinkNotFound)
		}
		return nil, errFailedGetLink(err)
	}
	return rec, nil
}

func (r *LinkRepository) ListByPaths(ctx context.Context, teamID uuid.UUID, paths []string) ([]*link.Record, error) {
	query := `
		SELECT ` + linkColumns + ` FROM shared_links
		WHERE team_id = $1 AND owning_path = ANY($2)
	`

	rows, err := r.db.Pool.Query(ctx, query, teamID, paths)
	if err != nil {
		return nil, errFailedListLinks(err)
	}
	defer rows.Close()

	return collectLinks(rows)
}

func (r *LinkRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, after *repository.OwnerCursor, limit int) (*repository.LinkPage, error) {
	generation, err := r.Generation(ctx)
	if err != nil {
		return nil, err
	}

	if after != nil {
		anchorQuery := `
			SELECT EXISTS (
				SELECT 1 FROM shared_links
				WHERE owner_id = $1 AND id = $2 AND created_at = $3
			)
		`
		var anchorExists bool
		if err := r.db.Pool.QueryRow(ctx, anchorQuery, ownerID, after.LinkID, after.CreatedAt).Scan(&anchorExists); err != nil {
			return nil, errFailedListLinks(err)
		}
		if !anchorExists {
			return nil, apperrors.CursorReset(errCursorAnchorGone)
		}
	}

	query := `
		SELECT ` + linkColumns + ` FROM shared_links
		WHERE owner_id = $1 AND ($2::boolean OR (created_at, id) > ($3, $4))
		ORDER BY created_at, id
		LIMIT $5
	`

	fromStart := after == nil
	var afterCreated any
	var afterID any
	if after != nil {
		afterCreated = after.CreatedAt
		afterID = after.LinkID
	}

	rows, err := r.db.Pool.Query(ctx, query, ownerID, fromStart, afterCreated, afterID, limit+1)
	if err != nil {
		return nil, errFailedListLinks(err)
	}
	defer rows.Close()

	records, err := collectLinks(rows)
	if err != nil {
		return nil, err
	}

	page := &repository.LinkPage{Records: records, Generation: generation}
	if len(page.Records) > limit {
		page.Records = page.Records[:limit]
		page.HasMore = true
	}
	return page, nil
}

func (r *LinkRepository) UpdateSettings(ctx context.Context, rec *link.Record) (*link.Record, error) {
	query := `
		UPDATE shared_links
		SET requested_visibility = $2, password_hash = $3, expires_at = $4
		WHERE url = $1
		RETURNING ` + linkColumns

	out, err := scanLink(r.db.Pool.QueryRow(ctx, query, rec.URL, rec.Requested, rec.PasswordHash, rec.ExpiresAt))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errLinkNotFound)
		}
		return nil, errFailedUpdateLink(err)
	}
	return out, nil
}

func (r *LinkRepository) Delete(ctx context.Context, url string) error {
	query := "DELETE FROM shared_links WHERE url = $1"
	result, err := r.db.Pool.Exec(ctx, query, url)
	if err != nil {
		return errFailedDeleteLink(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errLinkNotFound)
	}

	return nil
}

// Generation reads the ordering generation. Offline compaction of the
// shared_links table bumps it, which invalidates outstanding cursors.
func (r *LinkRepository) Generation(ctx context.Context) (uint64, error) {
	query := "SELECT generation FROM link_repo_state WHERE id = 1"

	var generation uint64
	if err := r.db.Pool.QueryRow(ctx, query).Scan(&generation); err != nil {
		return 0, errFailedGetGeneration(err)
	}
	return generation, nil
}

func scanLink(row pgx.Row) (*link.Record, error) {
	rec := &link.Record{}
	err := row.Scan(
		&rec.ID,
		&rec.URL,
		&rec.Family,
		&rec.OwningPath,
		&rec.OwnerID,
		&rec.TeamID,
		&rec.Requested,
		&rec.PasswordHash,
		&rec.ExpiresAt,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func collectLinks(rows pgx.Rows) ([]*link.Record, error) {
	records := make([]*link.Record, 0)
	for rows.Next() {
		rec, err := scanLink(rows)
		if err != nil {
			return nil, errFailedScanLink(err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
