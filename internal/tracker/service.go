// Package tracker ties the goal/run repository to the notification engine.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/runtrack/internal/detect"
	"github.com/sandeepkv93/runtrack/internal/model"
	"github.com/sandeepkv93/runtrack/internal/notify"
	"github.com/sandeepkv93/runtrack/internal/storage"
)

var ErrInvalidDuration = errors.New("tracker: goal duration must be at least one day")

type GoalInput struct {
	Title  string
	Type   model.GoalType
	Target float64
	Unit   string
	Days   int
}

type Service struct {
	repo   storage.Repository
	engine *notify.Engine
	log    *slog.Logger
	newID  func() string
}

func New(repo storage.Repository, engine *notify.Engine, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, engine: engine, log: log, newID: uuid.NewString}
}

func (s *Service) Engine() *notify.Engine {
	return s.engine
}

func (s *Service) Goals(ctx context.Context) ([]model.Goal, error) {
	return s.repo.ListGoals(ctx, storage.GoalListFilter{})
}

func (s *Service) Runs(ctx context.Context) ([]model.Run, error) {
	return s.repo.ListRuns(ctx, storage.RunListFilter{})
}

// AddGoal creates an active goal starting today and lasting in.Days days.
func (s *Service) AddGoal(ctx context.Context, in GoalInput) (model.Goal, error) {
	if in.Days < 1 {
		return model.Goal{}, ErrInvalidDuration
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = in.Type.DefaultUnit()
	}
	y, m, d := s.engine.Now().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, s.engine.Location())
	g := model.Goal{
		ID:          s.newID(),
		Title:       strings.TrimSpace(in.Title),
		Type:        in.Type,
		TargetValue: in.Target,
		TargetUnit:  unit,
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, in.Days-1),
		IsActive:    true,
		Color:       goalColor(in.Type),
		Icon:        goalIcon(in.Type),
	}
	if err := s.repo.CreateGoal(ctx, g); err != nil {
		return model.Goal{}, err
	}
	s.log.Info("goal created", "goal_id", g.ID, "type", g.Type, "target", g.TargetValue)
	return g, nil
}

// DeleteGoal removes the goal and forgets its notification state.
func (s *Service) DeleteGoal(ctx context.Context, id string) error {
	if err := s.repo.DeleteGoal(ctx, id); err != nil {
		return err
	}
	s.engine.ResetGoal(ctx, id)
	s.log.Info("goal deleted", "goal_id", id)
	return nil
}

// LogRun records a run dated now and runs a detection cycle.
func (s *Service) LogRun(ctx context.Context, km float64, duration time.Duration, notes string) (model.Run, []model.Notification, error) {
	r := model.Run{
		ID:         s.newID(),
		Date:       s.engine.Now(),
		DistanceKm: km,
		Duration:   duration,
		Notes:      strings.TrimSpace(notes),
	}
	if err := s.repo.CreateRun(ctx, r); err != nil {
		return model.Run{}, nil, err
	}
	s.log.Info("run logged", "run_id", r.ID, "distance_km", km, "duration", duration)
	accepted, err := s.Check(ctx)
	return r, accepted, err
}

// Check syncs goal values with the run history and refreshes notifications.
func (s *Service) Check(ctx context.Context) ([]model.Notification, error) {
	goals, runs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.Refresh(ctx, goals, runs), nil
}

// Reminder fires the morning or evening reminder.
func (s *Service) Reminder(ctx context.Context, evening bool) (model.Notification, bool, error) {
	if !evening {
		n, ok := s.engine.MorningReminder(ctx)
		return n, ok, nil
	}
	runs, err := s.Runs(ctx)
	if err != nil {
		return model.Notification{}, false, err
	}
	n, ok := s.engine.EveningReminder(ctx, runs)
	return n, ok, nil
}

type Overview struct {
	Goals    []model.Goal
	Progress map[string]model.GoalProgress
	Runs     []model.Run
	Stats    detect.GoalStats
	Streak   detect.StreakInfo
}

// Overview loads synced goals, runs and derived statistics without touching
// notification state.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	goals, runs, err := s.load(ctx)
	if err != nil {
		return Overview{}, err
	}
	now := s.engine.Now()
	progress := make(map[string]model.GoalProgress, len(goals))
	for _, g := range goals {
		progress[g.ID] = model.ComputeProgress(g, now)
	}
	return Overview{
		Goals:    goals,
		Progress: progress,
		Runs:     runs,
		Stats:    detect.CalculateGoalStats(goals, progress, now),
		Streak:   detect.CalculateStreak(model.RunDates(runs), now, 0),
	}, nil
}

func (s *Service) load(ctx context.Context) ([]model.Goal, []model.Run, error) {
	goals, err := s.Goals(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list goals: %w", err)
	}
	runs, err := s.Runs(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list runs: %w", err)
	}
	now := s.engine.Now()
	for i, g := range goals {
		synced, changed := g.Sync(runs, now)
		if !changed {
			continue
		}
		if err := s.repo.UpdateGoal(ctx, synced); err != nil {
			s.log.Warn("goal sync not saved", "goal_id", g.ID, "error", err)
		}
		goals[i] = synced
	}
	return goals, runs, nil
}

func goalColor(t model.GoalType) string {
	switch t {
	case model.GoalTypeDistance:
		return "#3b82f6"
	case model.GoalTypePace:
		return "#ef4444"
	case model.GoalTypeTime:
		return "#8b5cf6"
	case model.GoalTypeFrequency:
		return "#22c55e"
	default:
		return "#f97316"
	}
}

func goalIcon(t model.GoalType) string {
	switch t {
	case model.GoalTypeDistance:
		return "🛣️"
	case model.GoalTypePace:
		return "⚡"
	case model.GoalTypeTime:
		return "⏱️"
	case model.GoalTypeFrequency:
		return "📆"
	default:
		return "🏔️"
	}
}
