package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/runtrack/internal/model"
)

func setupStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runtrack-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	store, err := NewSQLiteStore(db, time.UTC)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func date(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.ParseInLocation(time.DateOnly, value, time.UTC)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return out
}

func TestGoalCRUDAndList(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	goal := model.Goal{
		ID:          "goal-1",
		Title:       "October 100k",
		Type:        model.GoalTypeDistance,
		TargetValue: 100,
		TargetUnit:  "km",
		StartDate:   date(t, "2026-10-01"),
		EndDate:     date(t, "2026-10-31"),
		IsActive:    true,
	}
	if err := store.CreateGoal(ctx, goal); err != nil {
		t.Fatalf("create goal: %v", err)
	}

	got, err := store.GetGoal(ctx, goal.ID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if got.Title != goal.Title || !got.EndDate.Equal(goal.EndDate) || !got.IsActive {
		t.Fatalf("unexpected goal get result: %#v", got)
	}

	completedAt := time.Date(2026, 10, 20, 18, 30, 0, 0, time.UTC)
	goal.CurrentValue = 100
	goal.Complete(completedAt)
	goal.IsActive = false
	if err := store.UpdateGoal(ctx, goal); err != nil {
		t.Fatalf("update goal: %v", err)
	}

	got, err = store.GetGoal(ctx, goal.ID)
	if err != nil {
		t.Fatalf("get updated goal: %v", err)
	}
	if !got.IsCompleted || got.CompletedAt == nil || !got.CompletedAt.Equal(completedAt) {
		t.Fatalf("expected completion to round trip, got %#v", got)
	}

	active, err := store.ListGoals(ctx, GoalListFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("list active goals: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active goals, got %d", len(active))
	}

	all, err := store.ListGoals(ctx, GoalListFilter{})
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(all) != 1 || all[0].ID != goal.ID {
		t.Fatalf("unexpected goal list: %#v", all)
	}

	if err := store.DeleteGoal(ctx, goal.ID); err != nil {
		t.Fatalf("delete goal: %v", err)
	}
	if _, err := store.GetGoal(ctx, goal.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteGoal(ctx, goal.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCreateGoalRejectsInvalid(t *testing.T) {
	store := setupStore(t)
	err := store.CreateGoal(context.Background(), model.Goal{ID: "bad", Title: "x", Type: "swim"})
	if !errors.Is(err, model.ErrInvalidGoalType) {
		t.Fatalf("expected invalid goal type, got %v", err)
	}
}

func TestRunCRUDAndListSince(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	runs := []model.Run{
		{ID: "run-1", Date: time.Date(2026, 10, 1, 7, 0, 0, 0, time.UTC), DistanceKm: 5, Duration: 30 * time.Minute},
		{ID: "run-2", Date: time.Date(2026, 10, 3, 7, 0, 0, 0, time.UTC), DistanceKm: 10, Duration: 55 * time.Minute, Notes: "tempo"},
		{ID: "run-3", Date: time.Date(2026, 10, 5, 7, 0, 0, 0, time.UTC), DistanceKm: 21.1, Duration: 2 * time.Hour},
	}
	for _, r := range runs {
		if err := store.CreateRun(ctx, r); err != nil {
			t.Fatalf("create run %s: %v", r.ID, err)
		}
	}

	since := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	recent, err := store.ListRuns(ctx, RunListFilter{Since: &since})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "run-3" || recent[1].ID != "run-2" {
		t.Fatalf("unexpected recent runs: %#v", recent)
	}
	if recent[1].Notes != "tempo" || recent[1].Duration != 55*time.Minute {
		t.Fatalf("expected run fields to round trip, got %#v", recent[1])
	}

	page, err := store.ListRuns(ctx, RunListFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("list runs page: %v", err)
	}
	if len(page) != 1 || page[0].ID != "run-2" {
		t.Fatalf("unexpected page: %#v", page)
	}

	if err := store.DeleteRun(ctx, "run-1"); err != nil {
		t.Fatalf("delete run: %v", err)
	}
	if err := store.DeleteRun(ctx, "run-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestKVUpsertAndDelete(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "prefs"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "prefs", `{"a":1}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "prefs", `{"a":2}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, ok, err := store.Get(ctx, "prefs")
	if err != nil || !ok || value != `{"a":2}` {
		t.Fatalf("unexpected value %q ok=%v err=%v", value, ok, err)
	}
	if err := store.Delete(ctx, "prefs"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "prefs"); ok {
		t.Fatalf("expected key to be gone")
	}
}

func TestJSONHelpers(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	var dst []int
	ok, err := GetJSON(ctx, kv, "milestones:g1", &dst)
	if err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := SetJSON(ctx, kv, "milestones:g1", []int{25, 50}); err != nil {
		t.Fatalf("set json: %v", err)
	}
	ok, err = GetJSON(ctx, kv, "milestones:g1", &dst)
	if err != nil || !ok || len(dst) != 2 || dst[1] != 50 {
		t.Fatalf("unexpected decode %v ok=%v err=%v", dst, ok, err)
	}

	_ = kv.Set(ctx, "broken", "{not json")
	if _, err := GetJSON(ctx, kv, "broken", &dst); err == nil {
		t.Fatalf("expected decode error for corrupt value")
	}
}
