package postgres

import (
	"context"

	"github.com/google/uuid"
)

type QuotaRepository struct {
	db *DB
}

func NewQuotaRepository(db *DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

func (r *QuotaRepository) GetBatch(ctx context.Context, memberIDs []uuid.UUID) (map[uuid.UUID]uint32, error) {
	query := `
		SELECT member_id, quota_gb
		FROM custom_quotas WHERE member_id = ANY($1)
	`

	rows, err := r.db.Pool.Query(ctx, query, memberIDs)
	if err != nil {
		return nil, errFailedGetQuotas(err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]uint32, len(memberIDs))
	for rows.Next() {
		var memberID uuid.UUID
		var quotaGB uint32
		if err := rows.Scan(&memberID, &quotaGB); err != nil {
			return nil, errFailedScanQuota(err)
		}
		out[memberID] = quotaGB
	}

	return out, rows.Err()
}

func (r *QuotaRepository) Upsert(ctx context.Context, memberID uuid.UUID, quotaGB uint32) error {
	query := `
		INSERT INTO custom_quotas (member_id, quota_gb)
		VALUES ($1, $2)
		ON CONFLICT (member_id) DO UPDATE SET quota_gb = EXCLUDED.quota_gb
	`

	if _, err := r.db.Pool.Exec(ctx, query, memberID, quotaGB); err != nil {
		return errFailedUpsertQuota(err)
	}
	return nil
}

func (r *QuotaRepository) Remove(ctx context.Context, memberID uuid.UUID) error {
	query := "DELETE FROM custom_quotas WHERE member_id = $1"

	// Removing an absent override is a no-op, not an error.
	if _, err := r.db.Pool.Exec(ctx, query, memberID); err != nil {
		return errFailedRemoveQuota(err)
	}
	return nil
}
