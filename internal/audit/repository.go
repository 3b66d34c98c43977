package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const timelineWindowSQL = `SELECT occurred_at, action, entity, entity_id, meta
FROM audit_logs
WHERE ($1::text IS NULL OR entity = $1)
  AND ($2::text IS NULL OR entity_id = $2)
  AND ($3::text IS NULL OR action = $3)
  AND ($4::timestamptz IS NULL OR occurred_at >= $4)
  AND ($5::timestamptz IS NULL OR occurred_at < $5)
ORDER BY occurred_at DESC, id DESC
OFFSET $6 LIMIT $7`

func (r *pgRepository) TimelineWindow(ctx context.Context, arg WindowParams) ([]TimelineRow, error) {
	rows, err := r.pool.Query(ctx, timelineWindowSQL,
		arg.Entity, arg.EntityID, arg.Action, arg.FromAt, arg.ToAt, arg.OffsetRows, arg.LimitRows)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimelineRow
	for rows.Next() {
		var (
			row  TimelineRow
			meta []byte
		)
		if err := rows.Scan(&row.At, &row.Action, &row.Entity, &row.EntityID, &meta); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &row.Meta); err != nil {
				return nil, fmt.Errorf("decode audit meta: %w", err)
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
