// Package sqlite stores scheduled instances in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/cyp0633/upkeep/schedule"
	"github.com/cyp0633/upkeep/schedule/storage"
)

// Schema creates the scheduled_instances table.
const Schema = `
CREATE TABLE IF NOT EXISTS scheduled_instances (
	id            TEXT PRIMARY KEY,
	work_order_id TEXT NOT NULL,
	assignee_id   TEXT,
	created_by    TEXT,
	status        TEXT NOT NULL DEFAULT 'pending',
	due_date      TEXT NOT NULL,
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scheduled_instances_work_order
	ON scheduled_instances (work_order_id, due_date);
`

// due dates are stored as UTC text so they sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements storage.Storage with SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and applies the schema.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListInstances(ctx context.Context, workOrderID string) ([]schedule.Instance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, work_order_id, assignee_id, created_by, status, due_date
		 FROM scheduled_instances WHERE work_order_id = ? ORDER BY due_date, id`,
		workOrderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	defer rows.Close()

	var out []schedule.Instance
	for rows.Next() {
		var (
			inst     schedule.Instance
			assignee sql.NullString
			creator  sql.NullString
			status   string
			due      string
		)
		if err := rows.Scan(&inst.ID, &inst.WorkOrderID, &assignee, &creator, &status, &due); err != nil {
			return nil, fmt.Errorf("failed to scan instance: %w", err)
		}
		inst.AssigneeID = assignee.String
		inst.CreatedBy = creator.String
		inst.Status = schedule.Status(status)
		if inst.DueDate, err = time.Parse(timeLayout, due); err != nil {
			return nil, fmt.Errorf("failed to parse due date of %s: %w", inst.ID, err)
		}
		out = append(out, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	return out, nil
}

// ApplyPlan runs the deletes and inserts in one transaction. Deletes are
// restricted to rows that are still pending.
func (s *Store) ApplyPlan(ctx context.Context, plan schedule.Plan) ([]schedule.Instance, error) {
	for _, d := range plan.Create {
		if err := storage.ValidateDraft(d); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range plan.Delete {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM scheduled_instances WHERE id = ? AND status = ?",
			id, string(schedule.StatusPending),
		); err != nil {
			return nil, fmt.Errorf("failed to delete instance %s: %w", id, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scheduled_instances
		 (id, work_order_id, assignee_id, created_by, status, due_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	createdAt := time.Now().UTC().Format(timeLayout)
	created := make([]schedule.Instance, 0, len(plan.Create))
	for _, d := range plan.Create {
		inst := schedule.Instance{
			ID:          uuid.NewString(),
			WorkOrderID: d.WorkOrderID,
			AssigneeID:  d.AssigneeID,
			CreatedBy:   d.CreatedBy,
			Status:      d.Status,
			DueDate:     d.DueDate,
		}
		if _, err := stmt.ExecContext(ctx,
			inst.ID, inst.WorkOrderID, nullable(inst.AssigneeID), nullable(inst.CreatedBy),
			string(inst.Status), inst.DueDate.UTC().Format(timeLayout), createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to insert instance: %w", err)
		}
		created = append(created, inst)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit schedule plan: %w", err)
	}
	return created, nil
}

func (s *Store) SetStatus(ctx context.Context, instanceID string, status schedule.Status) error {
	if !status.Valid() {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "unknown status " + string(status)}
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE scheduled_instances SET status = ? WHERE id = ?",
		string(status), instanceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if n == 0 {
		return &storage.Error{Type: storage.ErrNotFound, Message: "instance not found"}
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
