package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PurchaseEventRepo appends to the purchase audit trail. A repo without a
// pool drops writes so the service keeps working when Postgres is down.
type PurchaseEventRepo struct {
	pool *pgxpool.Pool
}

type PurchaseEventRecord struct {
	Name       string
	ProductID  string
	PurchaseID string
	Outcome    string
	OccurredAt time.Time
	Props      map[string]any
}

type PurchaseEventRow struct {
	ID         int64
	BuyerID    string
	Name       string
	ProductID  string
	PurchaseID string
	Outcome    string
	Props      map[string]any
	OccurredAt time.Time
}

func NewPurchaseEventRepo(pool *pgxpool.Pool) *PurchaseEventRepo {
	return &PurchaseEventRepo{pool: pool}
}

func (r *PurchaseEventRepo) Enabled() bool {
	return r != nil && r.pool != nil
}

func (r *PurchaseEventRepo) InsertBatch(ctx context.Context, buyerID string, events []PurchaseEventRecord) error {
	if len(events) == 0 || !r.Enabled() {
		return nil
	}

	const query = `
INSERT INTO purchase_events (
	buyer_id,
	name,
	product_id,
	purchase_id,
	outcome,
	payload,
	occurred_at,
	created_at
) VALUES (
	$1,
	$2,
	NULLIF($3, ''),
	NULLIF($4, ''),
	NULLIF($5, ''),
	$6::jsonb,
	$7,
	NOW()
)
`

	batch := &pgx.Batch{}
	for _, event := range events {
		props := event.Props
		if props == nil {
			props = map[string]any{}
		}
		payload, err := json.Marshal(props)
		if err != nil {
			return fmt.Errorf("marshal purchase event props: %w", err)
		}

		occurredAt := event.OccurredAt.UTC()
		if event.OccurredAt.IsZero() {
			occurredAt = time.Now().UTC()
		}
		batch.Queue(query,
			strings.TrimSpace(buyerID),
			event.Name,
			event.ProductID,
			event.PurchaseID,
			event.Outcome,
			string(payload),
			occurredAt,
		)
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		for i := 0; i < len(events); i++ {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("insert purchase event #%d: %w", i, err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("close purchase event batch: %w", err)
		}
		return nil
	})
}

func (r *PurchaseEventRepo) ListByBuyer(ctx context.Context, buyerID string, limit int) ([]PurchaseEventRow, error) {
	if !r.Enabled() {
		return nil, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, buyer_id, name, COALESCE(product_id, ''), COALESCE(purchase_id, ''), COALESCE(outcome, ''), payload, occurred_at
FROM purchase_events
WHERE buyer_id = $1
ORDER BY occurred_at DESC, id DESC
LIMIT $2
`, strings.TrimSpace(buyerID), limit)
	if err != nil {
		return nil, fmt.Errorf("query purchase events: %w", err)
	}
	defer rows.Close()

	out := make([]PurchaseEventRow, 0, limit)
	for rows.Next() {
		var (
			row        PurchaseEventRow
			rawPayload []byte
		)
		if err := rows.Scan(&row.ID, &row.BuyerID, &row.Name, &row.ProductID, &row.PurchaseID, &row.Outcome, &rawPayload, &row.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan purchase event: %w", err)
		}
		if len(rawPayload) > 0 {
			if err := json.Unmarshal(rawPayload, &row.Props); err != nil {
				return nil, fmt.Errorf("decode purchase event payload: %w", err)
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase events: %w", err)
	}

	return out, nil
}
