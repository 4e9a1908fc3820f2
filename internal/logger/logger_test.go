package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitDevelopmentWritesDebugText(t *testing.T) {
	var buf bytes.Buffer
	log := Init(&buf, true, "")
	log.Debug("refresh complete", "goals", 2)

	out := buf.String()
	if !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "goals=2") {
		t.Fatalf("unexpected text output %q", out)
	}
}

func TestInitProductionWritesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := Init(&buf, false, "")
	log.Debug("hidden")
	log.Info("notification delivered", "type", "milestone")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected debug to be filtered, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("expected json line: %v", err)
	}
	if rec["msg"] != "notification delivered" || rec["type"] != "milestone" {
		t.Fatalf("unexpected record %#v", rec)
	}
}

func TestOpenFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "runtrack.log")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	Init(f, true, "").Info("hello")
	_ = f.Close()
	Flush()

	data, err := os.ReadFile(path)
	if err != nil || !strings.Contains(string(data), "hello") {
		t.Fatalf("expected log line in file, got %q err=%v", data, err)
	}
}
