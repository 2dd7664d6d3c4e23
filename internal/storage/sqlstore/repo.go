package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"review_pipeline/internal/domain"
)

// Repo implements domain.SheetStore on a SQL database.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Open connects with driver "mysql" or "sqlite", pings, and applies the
// schema.
func Open(ctx context.Context, driver, dsn string) (*Repo, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// one writer; avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	r := New(db)
	if err := r.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) Migrate(ctx context.Context) error {
	for _, stmt := range schemaSQL {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func sheetExists(ctx context.Context, q querier, sheet string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, sheetExistsSQL, sheet).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repo) ReadAll(ctx context.Context, sheet string) ([][]string, error) {
	ok, err := sheetExists(ctx, r.db, sheet)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", sheet, domain.ErrSheetNotFound)
	}

	rows, err := r.db.QueryContext(ctx, selectRowsSQL, sheet)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("decode row of %s: %w", sheet, err)
		}
		out = append(out, cells)
	}
	return out, rows.Err()
}

func (r *Repo) WriteRows(ctx context.Context, sheet string, rows [][]string) error {
	return r.inTx(ctx, sheet, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteRowsBelowSQL, sheet, len(rows)); err != nil {
			return err
		}
		return insertRows(ctx, tx, sheet, 0, rows)
	})
}

func (r *Repo) AppendRows(ctx context.Context, sheet string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	return r.inTx(ctx, sheet, func(tx *sql.Tx) error {
		var next int
		if err := tx.QueryRowContext(ctx, nextRowSQL, sheet).Scan(&next); err != nil {
			return err
		}
		return insertRows(ctx, tx, sheet, next, rows)
	})
}

func (r *Repo) CreateSheet(ctx context.Context, name string, header []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ok, err := sheetExists(ctx, tx, name)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%s: %w", name, domain.ErrSheetExists)
	}
	if _, err := tx.ExecContext(ctx, insertSheetSQL, name); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, name, 0, [][]string{header}); err != nil {
		return err
	}
	return tx.Commit()
}

// inTx runs fn in a transaction after checking the sheet exists.
func (r *Repo) inTx(ctx context.Context, sheet string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ok, err := sheetExists(ctx, tx, sheet)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", sheet, domain.ErrSheetNotFound)
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func insertRows(ctx context.Context, tx *sql.Tx, sheet string, from int, rows [][]string) error {
	stmt, err := tx.PrepareContext(ctx, insertRowSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, row := range rows {
		if row == nil {
			row = []string{}
		}
		b, err := json.Marshal(row)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, sheet, from+i, string(b)); err != nil {
			return fmt.Errorf("insert row %d of %s: %w", from+i, sheet, err)
		}
	}
	return nil
}
