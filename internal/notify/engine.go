package notify

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/runtrack/internal/content"
	"github.com/sandeepkv93/runtrack/internal/detect"
	"github.com/sandeepkv93/runtrack/internal/dispatch"
	"github.com/sandeepkv93/runtrack/internal/model"
	"github.com/sandeepkv93/runtrack/internal/storage"
)

const summaryKey = "summary:last"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Toaster is the transient in-app surface.
type Toaster interface {
	Toast(message string, severity Severity)
}

type ToasterFunc func(message string, severity Severity)

func (f ToasterFunc) Toast(message string, severity Severity) { f(message, severity) }

type Options struct {
	KV         storage.KV
	Now        func() time.Time
	Location   *time.Location
	Dispatcher *dispatch.Dispatcher
	Toaster    Toaster
	Logger     *slog.Logger
	NewID      func() string
}

// Engine turns goal and run state into gated, queued notifications.
type Engine struct {
	prefs      *PreferenceStore
	gate       Gate
	queue      *Queue
	milestones *detect.MilestoneDetector
	deadlines  *detect.DeadlineDetector
	streaks    *detect.StreakDetector

	kv         storage.KV
	dispatcher *dispatch.Dispatcher
	toaster    Toaster
	now        func() time.Time
	loc        *time.Location
	log        *slog.Logger
	newID      func() string
}

func NewEngine(ctx context.Context, opts Options) *Engine {
	if opts.KV == nil {
		opts.KV = storage.NewMemoryKV()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	log := opts.Logger

	return &Engine{
		prefs:      NewPreferenceStore(opts.KV, log),
		gate:       NewGate(opts.Now, opts.Location, log),
		queue:      NewQueue(ctx, opts.KV, log),
		milestones: detect.NewMilestoneDetector(opts.KV, log),
		deadlines:  detect.NewDeadlineDetector(opts.KV, opts.Now, opts.Location, log),
		streaks:    detect.NewStreakDetector(opts.KV, log),
		kv:         opts.KV,
		dispatcher: opts.Dispatcher,
		toaster:    opts.Toaster,
		now:        opts.Now,
		loc:        opts.Location,
		log:        log,
		newID:      opts.NewID,
	}
}

func (e *Engine) Now() time.Time {
	return e.now().In(e.loc)
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

func (e *Engine) CheckMilestones(ctx context.Context, goal model.Goal, progress model.GoalProgress) detect.MilestoneCheckResult {
	return e.milestones.Check(ctx, goal, progress)
}

func (e *Engine) CheckDeadlineReminder(ctx context.Context, goal model.Goal, progress model.GoalProgress, offsets []int) detect.DeadlineCheckResult {
	return e.deadlines.Check(ctx, goal, progress, offsets)
}

func (e *Engine) CheckStreak(ctx context.Context, dates []time.Time) (detect.StreakInfo, bool) {
	return e.streaks.Check(ctx, dates, e.Now())
}

// AchievedMilestones lists the thresholds recorded for goalID.
func (e *Engine) AchievedMilestones(ctx context.Context, goalID string) []int {
	return e.milestones.Achieved(ctx, goalID)
}

func (e *Engine) NotifyMilestone(ctx context.Context, goal model.Goal, pct int) (model.Notification, bool) {
	c := content.Milestone(goal.Title, pct, goal.CurrentValue, goal.TargetValue, goal.TargetUnit)
	priority := model.PriorityMedium
	if pct >= 100 {
		priority = model.PriorityHigh
	}
	n := e.build(model.NotificationMilestone, priority, c, goal.ID)
	n.Milestone = &model.MilestoneDetails{
		Percentage:   pct,
		CurrentValue: goal.CurrentValue,
		TargetValue:  goal.TargetValue,
		Unit:         goal.TargetUnit,
	}
	return n, e.deliver(ctx, n)
}

func (e *Engine) NotifyDeadline(ctx context.Context, goal model.Goal, res detect.DeadlineCheckResult) (model.Notification, bool) {
	c := content.Deadline(goal.Title, res.DaysRemaining, goal.CurrentValue, goal.TargetValue, goal.TargetUnit)
	priority := model.PriorityMedium
	switch res.NotificationLevel {
	case model.DeadlineUrgent:
		priority = model.PriorityUrgent
	case model.DeadlineWarning:
		priority = model.PriorityHigh
	}
	n := e.build(model.NotificationDeadline, priority, c, goal.ID)
	n.Deadline = &model.DeadlineDetails{
		DaysRemaining: res.DaysRemaining,
		Level:         res.NotificationLevel,
		CurrentValue:  goal.CurrentValue,
		TargetValue:   goal.TargetValue,
		Unit:          goal.TargetUnit,
	}
	return n, e.deliver(ctx, n)
}

// NotifyStreak announces info. goalID and goalTitle are optional.
func (e *Engine) NotifyStreak(ctx context.Context, info detect.StreakInfo, goalID, goalTitle string) (model.Notification, bool) {
	c := content.Streak(info.CurrentStreak, info.StreakType, goalTitle)
	priority := model.PriorityMedium
	if info.IsNewRecord {
		priority = model.PriorityHigh
	}
	n := e.build(model.NotificationStreak, priority, c, goalID)
	n.Streak = &model.StreakDetails{
		Count:       info.CurrentStreak,
		StreakType:  info.StreakType,
		IsNewRecord: info.IsNewRecord,
	}
	return n, e.deliver(ctx, n)
}

func (e *Engine) NotifySummary(ctx context.Context, period model.SummaryPeriod, stats detect.GoalStats) (model.Notification, bool) {
	top := ""
	if stats.TopPerformer != nil {
		top = stats.TopPerformer.Title
	}
	c := content.Summary(period, stats.CompletedGoals, stats.TotalGoals, stats.AverageProgress, top)
	n := e.build(model.NotificationSummary, model.PriorityLow, c, "")
	n.Summary = &model.SummaryDetails{
		Period:          period,
		CompletedGoals:  stats.CompletedGoals,
		TotalGoals:      stats.TotalGoals,
		AverageProgress: stats.AverageProgress,
		TopGoal:         top,
	}
	return n, e.deliver(ctx, n)
}

func (e *Engine) NotifyReminder(ctx context.Context, kind model.ReminderKind) (model.Notification, bool) {
	n := e.build(model.NotificationReminder, model.PriorityMedium, content.Reminder(kind), "")
	n.Reminder = &model.ReminderDetails{Kind: kind}
	return n, e.deliver(ctx, n)
}

func (e *Engine) DismissNotification(ctx context.Context, id string) bool {
	return e.queue.Dismiss(ctx, id)
}

func (e *Engine) MarkAsRead(ctx context.Context, id string) bool {
	return e.queue.MarkRead(ctx, id)
}

func (e *Engine) MarkAllAsRead(ctx context.Context) int {
	return e.queue.MarkAllRead(ctx)
}

// ClearAllNotifications empties the queue and withdraws platform notifications.
func (e *Engine) ClearAllNotifications(ctx context.Context) {
	e.queue.ClearAll(ctx)
	if e.dispatcher != nil {
		e.dispatcher.CloseAll()
	}
}

func (e *Engine) UnreadCount() int {
	return e.queue.UnreadCount()
}

func (e *Engine) Notifications() []model.Notification {
	return e.queue.Visible()
}

func (e *Engine) Preferences(ctx context.Context) model.Preferences {
	return e.prefs.Load(ctx)
}

func (e *Engine) UpdatePreferences(ctx context.Context, patch model.PreferencesPatch) (model.Preferences, error) {
	return e.prefs.Update(ctx, patch)
}

func (e *Engine) PreferenceStore() *PreferenceStore {
	return e.prefs
}

// PlatformName names the OS-level delivery surface, or "none".
func (e *Engine) PlatformName() string {
	if e.dispatcher == nil {
		return "none"
	}
	return e.dispatcher.PlatformName()
}

// ResetGoal forgets milestone and deadline state for a deleted or reset goal.
func (e *Engine) ResetGoal(ctx context.Context, goalID string) {
	e.milestones.Reset(ctx, goalID)
	e.deadlines.Reset(ctx, goalID)
}

// Refresh runs one detection cycle over goals and runs and returns the
// notifications that passed the gate. Detection state is recorded even when a
// type is disabled.
func (e *Engine) Refresh(ctx context.Context, goals []model.Goal, runs []model.Run) []model.Notification {
	prefs := e.prefs.Load(ctx)
	now := e.Now()
	var accepted []model.Notification
	keep := func(n model.Notification, ok bool) {
		if ok {
			accepted = append(accepted, n)
		}
	}

	progresses := make(map[string]model.GoalProgress, len(goals))
	for _, g := range goals {
		if !g.IsActive && !g.IsCompleted {
			continue
		}
		progress := model.ComputeProgress(g, now)
		progresses[g.ID] = progress

		res := e.CheckMilestones(ctx, g, progress)
		if res.HasNewMilestones {
			keep(e.NotifyMilestone(ctx, g, slices.Max(res.NewMilestones)))
		}

		if g.IsCompleted {
			continue
		}
		dl := e.CheckDeadlineReminder(ctx, g, progress, prefs.DeadlineReminderDays)
		if dl.ShouldNotify {
			keep(e.NotifyDeadline(ctx, g, dl))
		}
	}

	if info, ok := e.CheckStreak(ctx, model.RunDates(runs)); ok {
		keep(e.NotifyStreak(ctx, info, "", ""))
	}

	if period, due := e.summaryDue(ctx, prefs, now); due {
		stats := detect.CalculateGoalStats(goals, progresses, now)
		n, ok := e.NotifySummary(ctx, period, stats)
		keep(n, ok)
		if ok || e.gate.Evaluate(n, prefs) == VerdictDisabled {
			e.markSummary(ctx, period, now)
		}
	}

	e.log.Debug("refresh complete", "goals", len(goals), "runs", len(runs), "accepted", len(accepted))
	return accepted
}

// MorningReminder sends the daily check-in.
func (e *Engine) MorningReminder(ctx context.Context) (model.Notification, bool) {
	return e.NotifyReminder(ctx, model.ReminderGoalCheckIn)
}

// EveningReminder sends the weekly planning nudge on Sundays, and otherwise a
// missed-run reminder when nothing was logged today.
func (e *Engine) EveningReminder(ctx context.Context, runs []model.Run) (model.Notification, bool) {
	now := e.Now()
	if now.Weekday() == time.Sunday {
		return e.NotifyReminder(ctx, model.ReminderWeeklyPlanning)
	}
	for _, r := range runs {
		if model.DaysBetween(r.Date.In(e.loc), now) == 0 {
			return model.Notification{}, false
		}
	}
	return e.NotifyReminder(ctx, model.ReminderMissedRun)
}

func (e *Engine) build(typ model.NotificationType, priority model.Priority, c content.Content, goalID string) model.Notification {
	return model.Notification{
		ID:        e.newID(),
		Type:      typ,
		Priority:  priority,
		Title:     c.Title,
		Message:   c.Message,
		Timestamp: e.Now(),
		Icon:      c.Icon,
		Color:     colorFor(typ, priority),
		GoalID:    goalID,
	}
}

func (e *Engine) deliver(ctx context.Context, n model.Notification) bool {
	if err := n.Validate(); err != nil {
		e.log.Error("notification rejected", "type", n.Type, "error", err)
		return false
	}
	prefs := e.prefs.Load(ctx)
	if verdict := e.gate.Evaluate(n, prefs); verdict != VerdictAccept {
		e.log.Debug("notification gated", "type", n.Type, "goal_id", n.GoalID, "verdict", verdict)
		return false
	}

	e.queue.Add(ctx, n)
	if e.toaster != nil {
		e.toaster.Toast(n.Icon+" "+n.Title, SeverityFor(n))
	}
	if prefs.EnablePlatform && e.dispatcher != nil {
		e.dispatcher.Post(ctx, n, !prefs.SoundEnabled)
	}
	e.log.Info("notification delivered", "id", n.ID, "type", n.Type, "priority", n.Priority, "goal_id", n.GoalID)
	return true
}

// SeverityFor maps a notification onto the toast surface's severities.
func SeverityFor(n model.Notification) Severity {
	switch {
	case n.Type == model.NotificationMilestone || n.Type == model.NotificationStreak:
		return SeveritySuccess
	case n.Priority == model.PriorityUrgent:
		return SeverityError
	case n.Priority == model.PriorityHigh:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

func colorFor(typ model.NotificationType, priority model.Priority) string {
	switch typ {
	case model.NotificationMilestone:
		return "#22c55e"
	case model.NotificationDeadline:
		if priority == model.PriorityUrgent {
			return "#ef4444"
		}
		return "#f59e0b"
	case model.NotificationStreak:
		return "#f97316"
	case model.NotificationSummary:
		return "#3b82f6"
	default:
		return "#8b5cf6"
	}
}

// summaryDue reports whether the configured period has rolled over since the
// last summary. The first evaluation only records a baseline.
func (e *Engine) summaryDue(ctx context.Context, prefs model.Preferences, now time.Time) (model.SummaryPeriod, bool) {
	period := prefs.SummaryFrequency
	key := periodKey(period, now)
	if key == "" {
		return period, false
	}
	last, ok, err := e.kv.Get(ctx, summaryKey)
	if err != nil {
		e.log.Warn("summary state unreadable", "key", summaryKey, "error", err)
		return period, false
	}
	if !ok {
		e.markSummary(ctx, period, now)
		return period, false
	}
	return period, last != key
}

func (e *Engine) markSummary(ctx context.Context, period model.SummaryPeriod, now time.Time) {
	if err := e.kv.Set(ctx, summaryKey, periodKey(period, now)); err != nil {
		e.log.Warn("summary state not saved", "key", summaryKey, "error", err)
	}
}

func periodKey(period model.SummaryPeriod, now time.Time) string {
	switch period {
	case model.SummaryDaily:
		return "daily:" + now.Format(time.DateOnly)
	case model.SummaryWeekly:
		y, w := now.ISOWeek()
		return fmt.Sprintf("weekly:%d-W%02d", y, w)
	case model.SummaryMonthly:
		return "monthly:" + now.Format("2006-01")
	default:
		return ""
	}
}
