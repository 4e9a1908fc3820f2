package notify

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/sandeepkv93/runtrack/internal/model"
	"github.com/sandeepkv93/runtrack/internal/storage"
)

func TestPreferenceStoreDefaultsAndMerge(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	s := NewPreferenceStore(kv, nil)

	if got := s.Load(ctx); !got.EnableStreaks || !slices.Equal(got.DeadlineReminderDays, []int{7, 3, 1}) {
		t.Fatalf("expected defaults, got %#v", got)
	}

	off := false
	updated, err := s.Update(ctx, model.PreferencesPatch{EnableStreaks: &off})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.EnableStreaks || !updated.EnableMilestones {
		t.Fatalf("unexpected merge result %#v", updated)
	}

	morning := "07:15"
	if _, err := s.Update(ctx, model.PreferencesPatch{MorningReminderTime: &morning}); err != nil {
		t.Fatalf("second update: %v", err)
	}
	got := s.Load(ctx)
	if got.EnableStreaks || got.MorningReminderTime != "07:15" {
		t.Fatalf("expected both updates to survive, got %#v", got)
	}
}

func TestPreferenceStoreRejectsInvalidUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewPreferenceStore(storage.NewMemoryKV(), nil)

	bad := "25:00"
	if _, err := s.Update(ctx, model.PreferencesPatch{EveningReminderTime: &bad}); !errors.Is(err, model.ErrInvalidClock) {
		t.Fatalf("expected invalid clock error, got %v", err)
	}
	if got := s.Load(ctx); got.EveningReminderTime != "19:00" {
		t.Fatalf("expected stored preferences untouched, got %q", got.EveningReminderTime)
	}
}

func TestPreferenceStoreFillsMissingFields(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	_ = kv.Set(ctx, prefsKey, `{"enableSummaries":false,"summaryFrequency":"monthly"}`)

	got := NewPreferenceStore(kv, nil).Load(ctx)
	if got.EnableSummaries || got.SummaryFrequency != model.SummaryMonthly {
		t.Fatalf("expected stored fields, got %#v", got)
	}
	if !got.EnableMilestones || got.MorningReminderTime != "08:00" || !got.SoundEnabled {
		t.Fatalf("expected defaults for missing fields, got %#v", got)
	}

	_ = kv.Set(ctx, prefsKey, "{oops")
	if got := NewPreferenceStore(kv, nil).Load(ctx); !got.EnableSummaries {
		t.Fatalf("expected corrupt preferences to fall back to defaults")
	}
}

func TestPreferenceStoreYAMLRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewPreferenceStore(storage.NewMemoryKV(), nil)

	out, err := s.ExportYAML(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(out), "enable_milestones: true") || !strings.Contains(string(out), "summary_frequency: weekly") {
		t.Fatalf("unexpected yaml export:\n%s", out)
	}

	doc := `
enable_summaries: false
deadline_reminder_days: [14, 2]
quiet_hours:
  enabled: true
  start: "21:30"
  end: "06:45"
`
	got, err := s.ImportYAML(ctx, []byte(doc))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if got.EnableSummaries || !slices.Equal(got.DeadlineReminderDays, []int{14, 2}) || got.QuietHours.Start != "21:30" {
		t.Fatalf("unexpected imported preferences %#v", got)
	}
	if !got.EnableStreaks {
		t.Fatalf("expected keys absent from yaml to keep their value")
	}

	if _, err := s.ImportYAML(ctx, []byte("quiet_hours: [")); err == nil {
		t.Fatalf("expected yaml decode error")
	}
}
