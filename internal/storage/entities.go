package storage

import (
	"database/sql"
	"time"
)

type goalRow struct {
	ID           string         `db:"id"`
	Title        string         `db:"title"`
	Type         string         `db:"type"`
	TargetValue  float64        `db:"target_value"`
	TargetUnit   string         `db:"target_unit"`
	StartDate    string         `db:"start_date"`
	EndDate      string         `db:"end_date"`
	CurrentValue float64        `db:"current_value"`
	IsActive     bool           `db:"is_active"`
	IsCompleted  bool           `db:"is_completed"`
	CompletedAt  sql.NullString `db:"completed_at"`
	Color        string         `db:"color"`
	Icon         string         `db:"icon"`
	CreatedAt    string         `db:"created_at"`
}

type runRow struct {
	ID          string  `db:"id"`
	RunAt       string  `db:"run_at"`
	DistanceKm  float64 `db:"distance_km"`
	DurationSec int64   `db:"duration_sec"`
	Notes       string  `db:"notes"`
	CreatedAt   string  `db:"created_at"`
}

type GoalListFilter struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}

type RunListFilter struct {
	Since  *time.Time
	Limit  int
	Offset int
}
