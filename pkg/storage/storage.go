// Package storage persists the in-progress draft between CLI invocations:
// the plan's scalar attributes plus the per-category selection set. It is a
// local scratchpad only; persisted plans live in the plan store.
package storage

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/edulabs-io/planctl/pkg/catalog"
	"github.com/edulabs-io/planctl/pkg/plan"
	"github.com/edulabs-io/planctl/pkg/selection"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS draft (
  id          INTEGER PRIMARY KEY CHECK (id = 1),
  plan_id     TEXT NOT NULL DEFAULT '',
  name        TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  duration    TEXT NOT NULL DEFAULT '',
  credits     TEXT NOT NULL DEFAULT '',
  mrp         REAL NOT NULL DEFAULT 0,
  offer_price REAL NOT NULL DEFAULT 0,
  category    TEXT NOT NULL DEFAULT '',
  updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS draft_selections (
  category_key TEXT NOT NULL,
  item_id      TEXT NOT NULL,
  PRIMARY KEY (category_key, item_id)
);
	`); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// SaveDraft upserts the single draft row.
func (d *DB) SaveDraft(ctx context.Context, dr plan.Draft) error {
	_, err := d.sql.ExecContext(ctx, `
INSERT INTO draft(id, plan_id, name, description, duration, credits, mrp, offer_price, category, updated_at)
VALUES(1, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  plan_id = excluded.plan_id,
  name = excluded.name,
  description = excluded.description,
  duration = excluded.duration,
  credits = excluded.credits,
  mrp = excluded.mrp,
  offer_price = excluded.offer_price,
  category = excluded.category,
  updated_at = CURRENT_TIMESTAMP`,
		dr.PlanID, dr.Name, dr.Description, dr.Duration, dr.Credits, dr.MRP, dr.OfferPrice, dr.Category)
	return err
}

// LoadDraft returns the stored draft; a missing row yields an empty draft.
func (d *DB) LoadDraft(ctx context.Context) (plan.Draft, error) {
	var dr plan.Draft
	row := d.sql.QueryRowContext(ctx,
		"SELECT plan_id, name, description, duration, credits, mrp, offer_price, category FROM draft WHERE id = 1")
	err := row.Scan(&dr.PlanID, &dr.Name, &dr.Description, &dr.Duration, &dr.Credits, &dr.MRP, &dr.OfferPrice, &dr.Category)
	if err == sql.ErrNoRows {
		return plan.Draft{}, nil
	}
	if err != nil {
		return plan.Draft{}, err
	}
	return dr, nil
}

// ClearDraft drops the draft row and every selection.
func (d *DB) ClearDraft(ctx context.Context) error {
	if _, err := d.sql.ExecContext(ctx, "DELETE FROM draft"); err != nil {
		return err
	}
	_, err := d.sql.ExecContext(ctx, "DELETE FROM draft_selections")
	return err
}

// ToggleSelection flips membership of (key, id) and reports whether the id
// is selected afterwards.
func (d *DB) ToggleSelection(ctx context.Context, key catalog.CategoryKey, id string) (bool, error) {
	res, err := d.sql.ExecContext(ctx,
		"DELETE FROM draft_selections WHERE category_key = ? AND item_id = ?", string(key), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	_, err = d.sql.ExecContext(ctx,
		"INSERT INTO draft_selections(category_key, item_id) VALUES(?, ?)", string(key), id)
	return err == nil, err
}

// AddSelections unions ids into key's stored set.
func (d *DB) AddSelections(ctx context.Context, key catalog.CategoryKey, ids []string) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO draft_selections(category_key, item_id) VALUES(?, ?)", string(key), id); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ClearSelections empties one key's stored set.
func (d *DB) ClearSelections(ctx context.Context, key catalog.CategoryKey) error {
	_, err := d.sql.ExecContext(ctx,
		"DELETE FROM draft_selections WHERE category_key = ?", string(key))
	return err
}

// ClearAllSelections empties every key's stored set.
func (d *DB) ClearAllSelections(ctx context.Context) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM draft_selections")
	return err
}

// LoadSelections rebuilds the in-memory selection set. Rows with an unknown
// category key are skipped.
func (d *DB) LoadSelections(ctx context.Context) (selection.Set, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT category_key, item_id FROM draft_selections ORDER BY category_key, item_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sel := selection.New()
	for rows.Next() {
		var rawKey, id string
		if err := rows.Scan(&rawKey, &id); err != nil {
			return nil, err
		}
		key := catalog.CategoryKey(rawKey)
		if !key.Valid() {
			continue
		}
		sel.SelectAllVisible(key, []string{id})
	}
	return sel, rows.Err()
}
