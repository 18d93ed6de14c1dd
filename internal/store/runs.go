package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type RunRow struct {
	ID          string `json:"id"`
	StartedAt   string `json:"startedAt"`
	FinishedAt  string `json:"finishedAt,omitempty"`
	Stubs       int    `json:"stubs"`
	Checked     int    `json:"checked"`
	AlreadySent int    `json:"alreadySent"`
	Filtered    int    `json:"filtered"`
	Sent        int    `json:"sent"`
	Errors      int    `json:"errors"`
}

func StartRun(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO runs (id, started_at) VALUES (?, ?);`,
		id, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	return nil
}

func FinishRun(ctx context.Context, db *sql.DB, r RunRow) error {
	_, err := db.ExecContext(ctx, `
UPDATE runs
SET finished_at = ?, stubs = ?, checked = ?, already_sent = ?, filtered = ?, sent = ?, errors = ?
WHERE id = ?;`,
		time.Now().UTC().Format(time.RFC3339),
		r.Stubs, r.Checked, r.AlreadySent, r.Filtered, r.Sent, r.Errors,
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

func ListRuns(ctx context.Context, db *sql.DB, limit int) ([]RunRow, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx, `
SELECT id, started_at, finished_at, stubs, checked, already_sent, filtered, sent, errors
FROM runs
ORDER BY started_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		if err := rows.Scan(
			&r.ID, &r.StartedAt, &r.FinishedAt,
			&r.Stubs, &r.Checked, &r.AlreadySent, &r.Filtered, &r.Sent, &r.Errors,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
