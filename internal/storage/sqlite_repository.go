package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/runtrack/internal/model"
)

const (
	sqliteTimeLayout = time.RFC3339Nano
	sqliteDateLayout = time.DateOnly
)

// SQLiteStore implements both KV and Repository on one database.
type SQLiteStore struct {
	db  *sqlx.DB
	loc *time.Location
}

// NewSQLiteStore wraps an open database. Goal calendar dates are read in loc.
func NewSQLiteStore(db *sql.DB, loc *time.Location) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if loc == nil {
		loc = time.Local
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteStore{db: sqlx.NewDb(db, "sqlite3"), loc: loc}, nil
}

// OpenSQLite opens path, applies migrations and returns a ready store.
func OpenSQLite(path string, loc *time.Location) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	store, err := NewSQLiteStore(db, loc)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set upserts in a single statement so concurrent writers of one key never
// interleave a read and a write.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, mustTime(time.Now()),
	)
	return err
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

func (s *SQLiteStore) CreateGoal(ctx context.Context, in model.Goal) error {
	if err := in.Validate(); err != nil {
		return err
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO goals (id, title, type, target_value, target_unit, start_date, end_date, current_value,
			is_active, is_completed, completed_at, color, icon, created_at)
		VALUES (:id, :title, :type, :target_value, :target_unit, :start_date, :end_date, :current_value,
			:is_active, :is_completed, :completed_at, :color, :icon, :created_at)`,
		toGoalRow(in, time.Now()),
	)
	return err
}

func (s *SQLiteStore) GetGoal(ctx context.Context, id string) (model.Goal, error) {
	var row goalRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM goals WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Goal{}, ErrNotFound
		}
		return model.Goal{}, err
	}
	return s.fromGoalRow(row)
}

func (s *SQLiteStore) UpdateGoal(ctx context.Context, in model.Goal) error {
	if err := in.Validate(); err != nil {
		return err
	}
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE goals
		SET title = :title, type = :type, target_value = :target_value, target_unit = :target_unit,
			start_date = :start_date, end_date = :end_date, current_value = :current_value,
			is_active = :is_active, is_completed = :is_completed, completed_at = :completed_at,
			color = :color, icon = :icon
		WHERE id = :id`,
		toGoalRow(in, time.Time{}),
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) DeleteGoal(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) ListGoals(ctx context.Context, filter GoalListFilter) ([]model.Goal, error) {
	query := `SELECT * FROM goals`
	args := make([]any, 0, 2)
	if filter.ActiveOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY end_date ASC, created_at ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	var rows []goalRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]model.Goal, 0, len(rows))
	for _, row := range rows {
		g, err := s.fromGoalRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *SQLiteStore) CreateRun(ctx context.Context, in model.Run) error {
	if err := in.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, run_at, distance_km, duration_sec, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.ID, mustTime(in.Date), in.DistanceKm, int64(in.Duration/time.Second), in.Notes, mustTime(time.Now()),
	)
	return err
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunListFilter) ([]model.Run, error) {
	query := `SELECT * FROM runs`
	args := make([]any, 0, 3)
	if filter.Since != nil {
		query += ` WHERE run_at >= ?`
		args = append(args, mustTime(*filter.Since))
	}
	query += ` ORDER BY run_at DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	var rows []runRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]model.Run, 0, len(rows))
	for _, row := range rows {
		runAt, err := parseRequiredTime(row.RunAt)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Run{
			ID:         row.ID,
			Date:       runAt.In(s.loc),
			DistanceKm: row.DistanceKm,
			Duration:   time.Duration(row.DurationSec) * time.Second,
			Notes:      row.Notes,
		})
	}
	return out, nil
}

func toGoalRow(g model.Goal, created time.Time) goalRow {
	row := goalRow{
		ID:           g.ID,
		Title:        g.Title,
		Type:         string(g.Type),
		TargetValue:  g.TargetValue,
		TargetUnit:   g.TargetUnit,
		StartDate:    g.StartDate.Format(sqliteDateLayout),
		EndDate:      g.EndDate.Format(sqliteDateLayout),
		CurrentValue: g.CurrentValue,
		IsActive:     g.IsActive,
		IsCompleted:  g.IsCompleted,
		Color:        g.Color,
		Icon:         g.Icon,
		CreatedAt:    mustTime(created),
	}
	if g.CompletedAt != nil {
		row.CompletedAt = sql.NullString{String: mustTime(*g.CompletedAt), Valid: true}
	}
	return row
}

func (s *SQLiteStore) fromGoalRow(row goalRow) (model.Goal, error) {
	start, err := time.ParseInLocation(sqliteDateLayout, row.StartDate, s.loc)
	if err != nil {
		return model.Goal{}, err
	}
	end, err := time.ParseInLocation(sqliteDateLayout, row.EndDate, s.loc)
	if err != nil {
		return model.Goal{}, err
	}
	completedAt, err := parseNullableTime(row.CompletedAt)
	if err != nil {
		return model.Goal{}, err
	}
	return model.Goal{
		ID:           row.ID,
		Title:        row.Title,
		Type:         model.GoalType(row.Type),
		TargetValue:  row.TargetValue,
		TargetUnit:   row.TargetUnit,
		StartDate:    start,
		EndDate:      end,
		CurrentValue: row.CurrentValue,
		IsActive:     row.IsActive,
		IsCompleted:  row.IsCompleted,
		CompletedAt:  completedAt,
		Color:        row.Color,
		Icon:         row.Icon,
	}, nil
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sql += " LIMIT -1"
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
