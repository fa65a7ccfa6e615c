package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fplstats/fpl-stats/internal/domain/archive"
	qb "github.com/fplstats/fpl-stats/internal/platform/querybuilder"
)

type SnapshotPayloadRepository struct {
	db *sqlx.DB
}

func NewSnapshotPayloadRepository(db *sqlx.DB) *SnapshotPayloadRepository {
	return &SnapshotPayloadRepository{db: db}
}

// Upsert archives a raw bootstrap document. Documents are keyed by
// content hash so a refetch of an unchanged feed only bumps fetched_at.
func (r *SnapshotPayloadRepository) Upsert(ctx context.Context, item archive.Payload) error {
	insertModel := snapshotPayloadInsertModel{
		EventID:     item.EventID,
		Payload:     item.PayloadJSON,
		PayloadHash: item.PayloadHash,
		FetchedAt:   item.FetchedAt,
	}

	query, args, err := qb.InsertModel("snapshot_payloads", insertModel, `ON CONFLICT (payload_hash)
DO UPDATE SET
    event_id = EXCLUDED.event_id,
    fetched_at = EXCLUDED.fetched_at`)
	if err != nil {
		return fmt.Errorf("build upsert snapshot payload query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert snapshot payload event=%d: %w", item.EventID, err)
	}

	return nil
}

func (r *SnapshotPayloadRepository) Latest(ctx context.Context) (archive.Payload, bool, error) {
	query, args, err := qb.Select("*").From("snapshot_payloads").
		OrderBy("fetched_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return archive.Payload{}, false, fmt.Errorf("build latest snapshot payload query: %w", err)
	}

	var row snapshotPayloadRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return archive.Payload{}, false, nil
		}
		return archive.Payload{}, false, fmt.Errorf("get latest snapshot payload: %w", err)
	}

	return archive.Payload{
		EventID:     row.EventID,
		PayloadJSON: row.Payload,
		PayloadHash: row.PayloadHash,
		FetchedAt:   row.FetchedAt,
	}, true, nil
}
