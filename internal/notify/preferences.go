package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/runtrack/internal/model"
	"github.com/sandeepkv93/runtrack/internal/storage"
)

const prefsKey = "prefs"

// PreferenceStore persists notification preferences. Stored values are
// decoded over the defaults, so fields added later pick up their default.
type PreferenceStore struct {
	kv  storage.KV
	log *slog.Logger
	mu  sync.Mutex
}

func NewPreferenceStore(kv storage.KV, log *slog.Logger) *PreferenceStore {
	if log == nil {
		log = slog.Default()
	}
	return &PreferenceStore{kv: kv, log: log}
}

func (s *PreferenceStore) Load(ctx context.Context) model.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Update merges patch into the stored preferences. Invalid results are
// rejected and leave the stored value untouched.
func (s *PreferenceStore) Update(ctx context.Context, patch model.PreferencesPatch) (model.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := patch.Apply(s.load(ctx))
	if err := next.Validate(); err != nil {
		return model.Preferences{}, err
	}
	s.save(ctx, next)
	return next, nil
}

// ExportYAML renders the effective preferences.
func (s *PreferenceStore) ExportYAML(ctx context.Context) ([]byte, error) {
	return yaml.Marshal(s.Load(ctx))
}

// ImportYAML merges a YAML document; keys absent from data are left as they are.
func (s *PreferenceStore) ImportYAML(ctx context.Context, data []byte) (model.Preferences, error) {
	var patch model.PreferencesPatch
	if err := yaml.Unmarshal(data, &patch); err != nil {
		return model.Preferences{}, fmt.Errorf("decode preferences: %w", err)
	}
	return s.Update(ctx, patch)
}

func (s *PreferenceStore) load(ctx context.Context) model.Preferences {
	prefs := model.DefaultPreferences()
	raw, ok, err := s.kv.Get(ctx, prefsKey)
	if err != nil {
		s.log.Warn("preferences unreadable, using defaults", "key", prefsKey, "error", err)
		return prefs
	}
	if !ok || raw == "" {
		return prefs
	}
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		s.log.Warn("preferences corrupt, using defaults", "key", prefsKey, "error", err)
		return model.DefaultPreferences()
	}
	if err := prefs.Validate(); err != nil {
		s.log.Warn("stored preferences invalid, using defaults", "key", prefsKey, "error", err)
		return model.DefaultPreferences()
	}
	return prefs
}

func (s *PreferenceStore) save(ctx context.Context, prefs model.Preferences) {
	if err := storage.SetJSON(ctx, s.kv, prefsKey, prefs); err != nil {
		s.log.Warn("preferences not saved", "key", prefsKey, "error", err)
	}
}
