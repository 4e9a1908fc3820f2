package storage

import (
	"context"
	"errors"

	"github.com/sandeepkv93/runtrack/internal/model"
)

var ErrNotFound = errors.New("storage: not found")

// KV is the durable key-value store the notification engine persists into.
// Get reports ok=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Repository is the goal/run read model.
type Repository interface {
	CreateGoal(ctx context.Context, in model.Goal) error
	GetGoal(ctx context.Context, id string) (model.Goal, error)
	UpdateGoal(ctx context.Context, in model.Goal) error
	DeleteGoal(ctx context.Context, id string) error
	ListGoals(ctx context.Context, filter GoalListFilter) ([]model.Goal, error)

	CreateRun(ctx context.Context, in model.Run) error
	DeleteRun(ctx context.Context, id string) error
	ListRuns(ctx context.Context, filter RunListFilter) ([]model.Run, error)
}
