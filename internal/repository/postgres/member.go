package postgres

import (
	"context"

	"sharelink-service/internal/repository"
	apperrors "sharelink-service/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MemberDirectory answers team membership queries against the members
// table maintained by the account subsystem.
type MemberDirectory struct {
	db *DB
}

func NewMemberDirectory(db *DB) *MemberDirectory {
	return &MemberDirectory{db: db}
}

func (d *MemberDirectory) Exists(ctx context.Context, teamID, memberID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM team_members WHERE team_id = $1 AND member_id = $2
		)
	`

	var exists bool
	if err := d.db.Pool.QueryRow(ctx, query, teamID, memberID).Scan(&exists); err != nil {
		return false, errFailedGetMember(err)
	}
	return exists, nil
}

// Namespace resolves paths against the filesystem metadata table owned
// by the external storage subsystem.
type Namespace struct {
	db *DB
}

func NewNamespace(db *DB) *Namespace {
	return &Namespace{db: db}
}

func (n *Namespace) Stat(ctx context.Context, teamID uuid.UUID, path string) (*repository.PathEntry, error) {
	query := `
		SELECT path, is_dir FROM fs_entries
		WHERE team_id = $1 AND path = $2
	`

	entry := &repository.PathEntry{}
	err := n.db.Pool.QueryRow(ctx, query, teamID, path).Scan(&entry.Path, &entry.IsDir)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.PathNotFound(errEntryNotFound)
		}
		return nil, errFailedStatPath(err)
	}
	return entry, nil
}
