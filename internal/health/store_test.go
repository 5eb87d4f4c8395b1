package health

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())
	doc := newSession("round-trip", time.Now().UTC())
	doc.RotSignals.Forgetting.Count = 2

	if err := s.Save(doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load("round-trip")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.SessionID != "round-trip" || got.RotSignals.Forgetting.Count != 2 {
		t.Fatalf("loaded: %+v", got)
	}
	if got.Version != schemaVersion {
		t.Fatalf("Version: got %d want %d", got.Version, schemaVersion)
	}
}

func TestStore_LoadMissingSession(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Load("nope")
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("Load: got %v", err)
	}
}

func TestStore_LoadRejectsCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	cases := map[string]string{
		"truncated":               `{"version": 1, "session_id": "x"`,
		"missing required fields": `{"version": 1}`,
		"bad status":              `{"version": 1, "session_id": "x", "started": "2026-08-28T00:00:00Z", "rot_signals": {}, "quality_score": 50, "status": "FINE"}`,
		"score out of range":      `{"version": 1, "session_id": "x", "started": "2026-08-28T00:00:00Z", "rot_signals": {}, "quality_score": 700, "status": "HEALTHY"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if err := os.WriteFile(filepath.Join(dir, "session_x.json"), []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := s.Load("x"); err == nil {
				t.Fatal("Load: corrupt document accepted")
			}
		})
	}
}

func TestStore_LoadRejectsNewerVersion(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	body := `{"version": 99, "session_id": "x", "started": "2026-08-28T00:00:00Z", "rot_signals": {}, "quality_score": 100, "status": "HEALTHY"}`
	if err := os.WriteFile(filepath.Join(dir, "session_x.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := s.Load("x")
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Fatalf("Load: got %v", err)
	}
}

func TestStore_SaveLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if err := s.Save(newSession("tidy", time.Now())); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestStore_HashLogCounts(t *testing.T) {
	s := NewStore(t.TempDir())

	for want := 1; want <= 3; want++ {
		n, err := s.AppendHash("s", "abc123")
		if err != nil {
			t.Fatalf("AppendHash: %v", err)
		}
		if n != want {
			t.Fatalf("count: got %d want %d", n, want)
		}
	}
	if _, err := s.AppendHash("s", "other"); err != nil {
		t.Fatal(err)
	}
	n, err := s.CountHash("s", "abc123")
	if err != nil {
		t.Fatalf("CountHash: %v", err)
	}
	if n != 3 {
		t.Fatalf("count after unrelated append: got %d want 3", n)
	}

	if err := s.ResetHashLog("s"); err != nil {
		t.Fatalf("ResetHashLog: %v", err)
	}
	n, _ = s.CountHash("s", "abc123")
	if n != 0 {
		t.Fatalf("count after reset: got %d want 0", n)
	}
}

func TestStore_AllowlistSkipsBlanksAndComments(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	patterns, err := s.AllowlistPatterns()
	if err != nil {
		t.Fatalf("AllowlistPatterns: %v", err)
	}
	if patterns != nil {
		t.Fatalf("absent file: got %v want nil", patterns)
	}

	body := "# scope for this task\n\nsrc/**\n  docs/*.md  \n# trailing comment\n"
	if err := os.WriteFile(filepath.Join(dir, "scope_allowlist.txt"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	patterns, err = s.AllowlistPatterns()
	if err != nil {
		t.Fatalf("AllowlistPatterns: %v", err)
	}
	want := []string{"src/**", "docs/*.md"}
	if len(patterns) != len(want) {
		t.Fatalf("patterns: got %v want %v", patterns, want)
	}
	for i := range want {
		if patterns[i] != want[i] {
			t.Fatalf("pattern %d: got %q want %q", i, patterns[i], want[i])
		}
	}
}

func TestSanitizeID_FilesystemSafe(t *testing.T) {
	s := NewStore(t.TempDir())
	doc := newSession("feat/retry:v2", time.Now())
	if err := s.Save(doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Load("feat/retry:v2"); err != nil {
		t.Fatalf("Load: %v", err)
	}
}
