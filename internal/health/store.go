package health

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// sessionSchema guards against loading a corrupt or foreign document as
// session state. Validation failures surface as errors rather than a
// default-HEALTHY session.
const sessionSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "session_id", "started", "rot_signals", "quality_score", "status"],
  "properties": {
    "version": {"type": "integer", "minimum": 1},
    "session_id": {"type": "string", "minLength": 1},
    "quality_score": {"type": "integer", "minimum": 0, "maximum": 100},
    "status": {"enum": ["HEALTHY", "DEGRADED", "CRITICAL", "ABORT"]},
    "token_tracking": {"type": "object"},
    "rot_signals": {"type": "object"}
  }
}`

var sessionSchema = jsonschema.MustCompileString("session_health.schema.json", sessionSchemaJSON)

// Store owns the on-disk state layout for one state directory:
//
//	<dir>/session_<id>.json      session health document
//	<dir>/hashes_<id>.log        append-only repetition hash log
//	<dir>/scope_allowlist.txt    scope patterns, one per line
//	<dir>/checkpoints/           immutable checkpoint snapshots
//
// At most one writer per session id is assumed; there is no file locking.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) sessionPath(id string) string {
	return filepath.Join(s.Dir, "session_"+sanitizeID(id)+".json")
}

func (s *Store) hashLogPath(id string) string {
	return filepath.Join(s.Dir, "hashes_"+sanitizeID(id)+".log")
}

func (s *Store) allowlistPath() string {
	return filepath.Join(s.Dir, "scope_allowlist.txt")
}

func (s *Store) checkpointsDir() string {
	return filepath.Join(s.Dir, "checkpoints")
}

// sanitizeID keeps session ids filesystem-safe without rejecting them.
func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '.':
			return '_'
		}
		return r
	}, id)
}

// Exists reports whether a session document is present.
func (s *Store) Exists(id string) (bool, error) {
	_, err := os.Stat(s.sessionPath(id))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Load reads and schema-validates a session document.
func (s *Store) Load(id string) (*SessionHealth, error) {
	path := s.sessionPath(id)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session %q not initialized (run init first)", id)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := sessionSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("invalid session document %s: %w", path, err)
	}

	var doc SessionHealth
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if doc.Version > schemaVersion {
		return nil, fmt.Errorf("session %q has version %d, newer than supported %d", id, doc.Version, schemaVersion)
	}
	return &doc, nil
}

// Save writes the document atomically via temp file + rename so a crash
// mid-write never leaves a truncated session file behind.
func (s *Store) Save(doc *SessionHealth) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %q: %w", doc.SessionID, err)
	}
	path := s.sessionPath(doc.SessionID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// AppendHash records one content hash in the append-only log and returns
// how many times that hash now appears across the whole log.
func (s *Store) AppendHash(id string, hash string) (int, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return 0, fmt.Errorf("create state dir: %w", err)
	}
	path := s.hashLogPath(id)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	_, werr := f.WriteString(hash + "\n")
	cerr := f.Close()
	if werr != nil {
		return 0, fmt.Errorf("append %s: %w", path, werr)
	}
	if cerr != nil {
		return 0, fmt.Errorf("close %s: %w", path, cerr)
	}
	return s.CountHash(id, hash)
}

// CountHash counts exact occurrences of a hash in the log.
func (s *Store) CountHash(id string, hash string) (int, error) {
	b, err := os.ReadFile(s.hashLogPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s: %w", s.hashLogPath(id), err)
	}
	n := 0
	for _, line := range strings.Split(string(b), "\n") {
		if strings.TrimSpace(line) == hash {
			n++
		}
	}
	return n, nil
}

// ResetHashLog truncates the repetition log; used by checkpointing.
func (s *Store) ResetHashLog(id string) error {
	err := os.Remove(s.hashLogPath(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reset hash log for %q: %w", id, err)
	}
	return nil
}

// AllowlistPatterns loads the scope allow-list. A missing file means no
// scope is declared; callers skip enforcement in that case.
func (s *Store) AllowlistPatterns() ([]string, error) {
	b, err := os.ReadFile(s.allowlistPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.allowlistPath(), err)
	}
	var patterns []string
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}

// WriteCheckpoint persists one immutable checkpoint snapshot.
func (s *Store) WriteCheckpoint(snap *CheckpointSnapshot) (string, error) {
	dir := s.checkpointsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create checkpoints dir: %w", err)
	}
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode checkpoint %q: %w", snap.ID, err)
	}
	path := filepath.Join(dir, snap.ID+".json")
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// ReadCheckpoint loads one checkpoint snapshot by id.
func (s *Store) ReadCheckpoint(id string) (*CheckpointSnapshot, error) {
	path := filepath.Join(s.checkpointsDir(), sanitizeID(id)+".json")
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var snap CheckpointSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &snap, nil
}
