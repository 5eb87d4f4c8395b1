package health

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/zeebo/blake3"

	"github.com/omnai-sh/omnai/internal/config"
)

// Tracker runs the rot-signal checks against a session document. Every
// check loads, mutates, rescores, and saves; the document on disk is
// always consistent with its own counters.
type Tracker struct {
	store *Store
	cfg   config.Settings

	now func() time.Time
}

func NewTracker(store *Store, cfg config.Settings) *Tracker {
	return &Tracker{store: store, cfg: cfg, now: time.Now}
}

// Init creates the session document if absent. Idempotent: an existing
// session is returned untouched, never overwritten.
func (t *Tracker) Init(id string) (*SessionHealth, error) {
	ok, err := t.store.Exists(id)
	if err != nil {
		return nil, err
	}
	if ok {
		return t.store.Load(id)
	}
	doc := newSession(id, t.now().UTC())
	if err := t.store.Save(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// CheckRepetition hashes the head of an output chunk and flags when the
// same hash has been seen three or more times this session. Content under
// 50 characters is ignored as not meaningful.
func (t *Tracker) CheckRepetition(id string, content string) (bool, error) {
	if len(content) < minMeaningfulChars {
		return false, nil
	}
	doc, err := t.store.Load(id)
	if err != nil {
		return false, err
	}

	prefix := content
	if len(prefix) > hashPrefixChars {
		prefix = prefix[:hashPrefixChars]
	}
	sum := blake3.Sum256([]byte(prefix))
	hash := fmt.Sprintf("%x", sum)

	count, err := t.store.AppendHash(id, hash)
	if err != nil {
		return false, err
	}

	detected := count >= repetitionThreshold
	if detected {
		doc.RotSignals.Repetition.Count++
	}
	window := append(doc.RotSignals.Repetition.LastHashes, hash)
	if len(window) > hashWindowSize {
		window = window[len(window)-hashWindowSize:]
	}
	doc.RotSignals.Repetition.LastHashes = window

	return detected, t.commit(doc)
}

// CheckHallucination flags a referenced path that does not exist on disk.
// Write operations are skipped entirely: a file about to be created is
// expected not to exist yet.
func (t *Tracker) CheckHallucination(id string, path string, operation string) (bool, error) {
	if strings.EqualFold(strings.TrimSpace(operation), "write") {
		return false, nil
	}
	doc, err := t.store.Load(id)
	if err != nil {
		return false, err
	}

	detected := false
	if _, serr := os.Stat(path); serr != nil {
		if !os.IsNotExist(serr) {
			return false, fmt.Errorf("stat %s: %w", path, serr)
		}
		doc.RotSignals.Hallucination.Count++
		doc.RotSignals.Hallucination.Instances = append(doc.RotSignals.Hallucination.Instances, Instance{
			Detail: path,
			At:     t.now().UTC(),
		})
		detected = true
	}
	return detected, t.commit(doc)
}

// CheckScope tests a path against the declared allow-list. No allow-list
// means no scope declared, and the check is skipped. A path failing every
// pattern is flagged once; repeats of the same path do not re-penalize.
func (t *Tracker) CheckScope(id string, path string) (bool, error) {
	patterns, err := t.store.AllowlistPatterns()
	if err != nil {
		return false, err
	}
	if len(patterns) == 0 {
		return false, nil
	}

	rel, err := normalizePath(path)
	if err != nil {
		return false, err
	}
	for _, pattern := range patterns {
		if matchesPattern(pattern, rel) {
			return false, nil
		}
	}

	doc, err := t.store.Load(id)
	if err != nil {
		return false, err
	}
	seen := false
	for _, p := range doc.RotSignals.ScopeCreep.Paths {
		if p == rel {
			seen = true
			break
		}
	}
	if !seen {
		doc.RotSignals.ScopeCreep.Paths = append(doc.RotSignals.ScopeCreep.Paths, rel)
		doc.RotSignals.ScopeCreep.Count++
	}
	return true, t.commit(doc)
}

// CheckForgetting substring-searches a normalized question against the
// session transcript. A hit means the question was already answered. This
// is a coarse textual test, not semantic similarity.
func (t *Tracker) CheckForgetting(id string, question string, transcriptPath string) (bool, error) {
	needle := normalizeQuestion(question)
	if needle == "" {
		return false, nil
	}
	b, err := os.ReadFile(transcriptPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read transcript %s: %w", transcriptPath, err)
	}
	if !strings.Contains(normalizeQuestion(string(b)), needle) {
		return false, nil
	}

	doc, err := t.store.Load(id)
	if err != nil {
		return false, err
	}
	doc.RotSignals.Forgetting.Count++
	doc.RotSignals.Forgetting.Instances = append(doc.RotSignals.Forgetting.Instances, Instance{
		Detail: question,
		At:     t.now().UTC(),
	})
	return true, t.commit(doc)
}

// RecordContradiction logs an externally observed contradiction. There is
// no automated detector for this signal; the caller supplies the evidence.
func (t *Tracker) RecordContradiction(id string, detail string) error {
	doc, err := t.store.Load(id)
	if err != nil {
		return err
	}
	doc.RotSignals.Contradiction.Count++
	doc.RotSignals.Contradiction.Instances = append(doc.RotSignals.Contradiction.Instances, Instance{
		Detail: detail,
		At:     t.now().UTC(),
	})
	return t.commit(doc)
}

// TrackTokens accumulates character-count token estimates. No tokenizer
// runs; this is a deliberate approximation.
func (t *Tracker) TrackTokens(id string, input string, output string) (*SessionHealth, error) {
	doc, err := t.store.Load(id)
	if err != nil {
		return nil, err
	}
	doc.TokenTracking.EstimatedInput += t.estimateTokens(input)
	doc.TokenTracking.EstimatedOutput += t.estimateTokens(output)
	if err := t.commit(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Calculate rescores the session and returns the updated document.
func (t *Tracker) Calculate(id string) (*SessionHealth, error) {
	doc, err := t.store.Load(id)
	if err != nil {
		return nil, err
	}
	if err := t.commit(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Status reads the session without mutating it.
func (t *Tracker) Status(id string) (*SessionHealth, error) {
	return t.store.Load(id)
}

// commit stamps the check time, rescores, and persists.
func (t *Tracker) commit(doc *SessionHealth) error {
	doc.LastCheck = t.now().UTC()
	recalculate(doc, t.cfg.MaxTokens, t.cfg.WarnThreshold, t.cfg.CritThreshold)
	return t.store.Save(doc)
}

func (t *Tracker) estimateTokens(s string) int {
	if s == "" {
		return 0
	}
	cpt := t.cfg.CharsPerToken
	if cpt <= 0 {
		cpt = 4
	}
	return len(s) / cpt
}

// normalizePath makes the candidate relative to the current working
// directory so allow-list patterns match regardless of how the caller
// spelled the path.
func normalizePath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil {
		return filepath.Clean(path), nil
	}
	return rel, nil
}

// matchesPattern tries the pattern both as a glob and as a regular
// expression; either interpretation matching puts the path in scope.
func matchesPattern(pattern string, rel string) bool {
	if ok, err := doublestar.Match(pattern, filepath.ToSlash(rel)); err == nil && ok {
		return true
	}
	if re, err := regexp.Compile(pattern); err == nil && re.MatchString(rel) {
		return true
	}
	return false
}

func normalizeQuestion(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '?', '!', '.', ',':
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
