package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

// JSONStore keeps events in one JSON object keyed by unix-seconds timestamp:
// {"1717171717": {"event": "qna", "payload": {...}}}. Events landing in the
// same second get a ".N" suffix on the key.
type JSONStore struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

type jsonEntry struct {
	Event   Kind           `json:"event"`
	Payload map[string]any `json:"payload"`
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path, now: time.Now}
}

func (s *JSONStore) Record(ctx context.Context, kind Kind, payload map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if payload == nil {
		payload = map[string]any{}
	}
	entries := s.load(ctx)
	key := strconv.FormatInt(s.now().Unix(), 10)
	for n := 1; ; n++ {
		if _, taken := entries[key]; !taken {
			break
		}
		key = fmt.Sprintf("%d.%d", s.now().Unix(), n)
	}
	entries[key] = jsonEntry{Event: kind, Payload: payload}
	return s.save(entries)
}

func (s *JSONStore) Counts(ctx context.Context) (Usage, error) {
	s.mu.Lock()
	entries := s.load(ctx)
	s.mu.Unlock()

	usage := newUsage()
	for _, entry := range entries {
		usage.add(entry.Event, 1)
	}
	return usage, nil
}

func (s *JSONStore) Events(ctx context.Context, limit int) ([]Event, error) {
	s.mu.Lock()
	entries := s.load(ctx)
	s.mu.Unlock()

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keyTime(keys[i]) > keyTime(keys[j])
	})

	limit = normalizeLimit(limit)
	if len(keys) > limit {
		keys = keys[:limit]
	}
	events := make([]Event, 0, len(keys))
	for _, key := range keys {
		entry := entries[key]
		events = append(events, Event{
			ID:        key,
			Timestamp: time.Unix(int64(keyTime(key)), 0).UTC(),
			Kind:      entry.Event,
			Payload:   entry.Payload,
		})
	}
	return events, nil
}

func (s *JSONStore) Close() error {
	return nil
}

// load treats a missing or unreadable file as an empty log.
func (s *JSONStore) load(ctx context.Context) map[string]jsonEntry {
	entries := map[string]jsonEntry{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.NewLogger(ctx).Warnf("analytics path=%q read failed: %v", s.path, err)
		}
		return entries
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		logging.NewLogger(ctx).Warnf("analytics path=%q is not valid JSON; starting fresh: %v", s.path, err)
		return map[string]jsonEntry{}
	}
	return entries
}

func (s *JSONStore) save(entries map[string]jsonEntry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return utils.WrapIfNotNil(err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return utils.WrapIfNotNil(err)
	}

	tmp, err := os.CreateTemp(dir, ".analytics-*.json")
	if err != nil {
		return utils.WrapIfNotNil(err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return utils.WrapIfNotNil(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return utils.WrapIfNotNil(err)
	}
	return utils.WrapIfNotNil(os.Rename(tmp.Name(), s.path))
}

func keyTime(key string) float64 {
	seconds, _, _ := strings.Cut(key, ".")
	parsed, err := strconv.ParseFloat(seconds, 64)
	if err != nil {
		return 0
	}
	if _, suffix, found := strings.Cut(key, "."); found {
		if n, err := strconv.Atoi(suffix); err == nil {
			parsed += float64(n) / 1e6
		}
	}
	return parsed
}
