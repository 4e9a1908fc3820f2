package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/runtrack/internal/model"
)

type Type string

const (
	TypeLog    Type = "log"
	TypeGoal   Type = "goal"
	TypeQuiet  Type = "quiet"
	TypeToggle Type = "toggle"
	TypeCheck  Type = "check"
	TypeRemind Type = "remind"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type LogArgs struct {
	DistanceKm float64
	Duration   time.Duration
	Notes      string
}

type GoalArgs struct {
	Type   model.GoalType
	Target float64
	Unit   string
	Days   int
	Title  string
}

type QuietArgs struct {
	Off   bool
	Start string
	End   string
}

// Apply returns q updated by the command. Turning quiet hours off keeps the
// stored window.
func (a QuietArgs) Apply(q model.QuietHours) model.QuietHours {
	if a.Off {
		q.Enabled = false
		return q
	}
	return model.QuietHours{Enabled: true, Start: a.Start, End: a.End}
}

type Feature string

const (
	FeatureMilestones Feature = "milestones"
	FeatureDeadlines  Feature = "deadlines"
	FeatureStreaks    Feature = "streaks"
	FeatureSummaries  Feature = "summaries"
	FeatureReminders  Feature = "reminders"
	FeaturePlatform   Feature = "platform"
	FeatureSound      Feature = "sound"
)

type ToggleArgs struct {
	Feature Feature
	On      bool
}

// Patch builds the preference update for the toggle.
func (a ToggleArgs) Patch() model.PreferencesPatch {
	on := a.On
	var p model.PreferencesPatch
	switch a.Feature {
	case FeatureMilestones:
		p.EnableMilestones = &on
	case FeatureDeadlines:
		p.EnableDeadlineReminders = &on
	case FeatureStreaks:
		p.EnableStreaks = &on
	case FeatureSummaries:
		p.EnableSummaries = &on
	case FeatureReminders:
		p.EnableReminders = &on
	case FeaturePlatform:
		p.EnablePlatform = &on
	case FeatureSound:
		p.SoundEnabled = &on
	}
	return p
}

type RemindArgs struct {
	Evening bool
	At      string
}

// Patch builds the preference update for the reminder time.
func (a RemindArgs) Patch() model.PreferencesPatch {
	at := a.At
	if a.Evening {
		return model.PreferencesPatch{EveningReminderTime: &at}
	}
	return model.PreferencesPatch{MorningReminderTime: &at}
}

type Command struct {
	Type   Type
	Raw    string
	Log    *LogArgs
	Goal   *GoalArgs
	Quiet  *QuietArgs
	Toggle *ToggleArgs
	Remind *RemindArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeLog:
		return parseLog(input, args)
	case TypeGoal:
		return parseGoal(input, args)
	case TypeQuiet:
		return parseQuiet(input, args)
	case TypeToggle:
		return parseToggle(input, args)
	case TypeCheck:
		return Command{Type: TypeCheck, Raw: input}, nil
	case TypeRemind:
		return parseRemind(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func parseLog(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("log requires a distance in km")
	}
	km, err := strconv.ParseFloat(args[0], 64)
	if err != nil || km <= 0 {
		return Command{}, invalid("invalid distance: %s", args[0])
	}
	out := LogArgs{DistanceKm: km}
	rest := args[1:]
	if len(rest) > 0 {
		if mins, err := strconv.ParseFloat(rest[0], 64); err == nil {
			if mins < 0 {
				return Command{}, invalid("invalid minutes: %s", rest[0])
			}
			out.Duration = time.Duration(mins * float64(time.Minute))
			rest = rest[1:]
		}
	}
	out.Notes = strings.Join(rest, " ")
	return Command{Type: TypeLog, Raw: raw, Log: &out}, nil
}

func parseGoal(raw string, args []string) (Command, error) {
	if len(args) < 5 {
		return Command{}, invalid("goal requires type, target, unit, days and title")
	}
	typ := model.GoalType(strings.ToLower(args[0]))
	if !typ.IsValid() {
		return Command{}, invalid("unknown goal type: %s", args[0])
	}
	target, err := strconv.ParseFloat(args[1], 64)
	if err != nil || target <= 0 {
		return Command{}, invalid("invalid target: %s", args[1])
	}
	days, err := strconv.Atoi(args[3])
	if err != nil || days < 1 {
		return Command{}, invalid("invalid days: %s", args[3])
	}
	unit := args[2]
	if unit == "-" {
		unit = ""
	}
	return Command{Type: TypeGoal, Raw: raw, Goal: &GoalArgs{
		Type:   typ,
		Target: target,
		Unit:   unit,
		Days:   days,
		Title:  strings.Join(args[4:], " "),
	}}, nil
}

func parseQuiet(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("quiet requires HH:MM-HH:MM or off")
	}
	if strings.EqualFold(args[0], "off") {
		return Command{Type: TypeQuiet, Raw: raw, Quiet: &QuietArgs{Off: true}}, nil
	}
	start, end, ok := strings.Cut(args[0], "-")
	if !ok {
		return Command{}, invalid("quiet requires HH:MM-HH:MM or off")
	}
	for _, v := range []string{start, end} {
		if _, err := model.ParseClock(v); err != nil {
			return Command{}, invalid("invalid time of day: %s", v)
		}
	}
	return Command{Type: TypeQuiet, Raw: raw, Quiet: &QuietArgs{Start: start, End: end}}, nil
}

func parseToggle(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, invalid("toggle requires a feature and on|off")
	}
	feature := Feature(strings.ToLower(args[0]))
	switch feature {
	case FeatureMilestones, FeatureDeadlines, FeatureStreaks, FeatureSummaries, FeatureReminders, FeaturePlatform, FeatureSound:
	default:
		return Command{}, invalid("unknown feature: %s", args[0])
	}
	var on bool
	switch strings.ToLower(args[1]) {
	case "on", "true", "yes":
		on = true
	case "off", "false", "no":
		on = false
	default:
		return Command{}, invalid("toggle expects on or off, got %s", args[1])
	}
	return Command{Type: TypeToggle, Raw: raw, Toggle: &ToggleArgs{Feature: feature, On: on}}, nil
}

func parseRemind(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, invalid("remind requires morning|evening and HH:MM")
	}
	var evening bool
	switch strings.ToLower(args[0]) {
	case "morning":
	case "evening":
		evening = true
	default:
		return Command{}, invalid("unknown reminder: %s", args[0])
	}
	if _, err := model.ParseClock(args[1]); err != nil {
		return Command{}, invalid("invalid time of day: %s", args[1])
	}
	return Command{Type: TypeRemind, Raw: raw, Remind: &RemindArgs{Evening: evening, At: args[1]}}, nil
}
