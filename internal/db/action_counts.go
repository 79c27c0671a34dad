package db

import (
	"context"
)

// ActionCount is a persisted counter of one action/outcome pair.
type ActionCount struct {
	Action  string
	Outcome string
	Count   int64
}

// IncrementActionCount bumps the counter for an action outcome, creating
// the row on first use.
func (d *DB) IncrementActionCount(ctx context.Context, action, outcome string) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO action_counts (action, outcome, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (action, outcome) DO UPDATE SET
			count = action_counts.count + 1,
			updated_at = NOW()
	`, action, outcome)
	return err
}

// GetAllActionCounts returns every action counter, for the Prometheus
// collector.
func (d *DB) GetAllActionCounts(ctx context.Context) ([]ActionCount, error) {
	rows, err := d.Pool.Query(ctx, `SELECT action, outcome, count FROM action_counts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []ActionCount
	for rows.Next() {
		var c ActionCount
		if err := rows.Scan(&c.Action, &c.Outcome, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}
