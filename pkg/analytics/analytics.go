package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/config"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

// Kind is the feature area a usage event belongs to.
type Kind string

const (
	KindQnA         Kind = "qna"
	KindCoding      Kind = "coding"
	KindSummaries   Kind = "summaries"
	KindTranscripts Kind = "transcripts"
	KindWellness    Kind = "wellness"
	KindQuiz        Kind = "quiz"
)

// Kinds lists the tracked kinds in display order.
var Kinds = []Kind{KindQnA, KindCoding, KindSummaries, KindTranscripts, KindWellness, KindQuiz}

type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"ts"`
	Kind      Kind           `json:"event"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Usage holds per-kind counts. Events of untracked kinds only count toward Total.
type Usage struct {
	Counts map[Kind]int `json:"counts"`
	Total  int          `json:"total"`
}

func newUsage() Usage {
	counts := make(map[Kind]int, len(Kinds))
	for _, kind := range Kinds {
		counts[kind] = 0
	}
	return Usage{Counts: counts}
}

func (u *Usage) add(kind Kind, n int) {
	u.Total += n
	if _, tracked := u.Counts[kind]; tracked {
		u.Counts[kind] += n
	}
}

// Sink records usage events and reports counts.
type Sink interface {
	Record(ctx context.Context, kind Kind, payload map[string]any) error
	Counts(ctx context.Context) (Usage, error)
	Events(ctx context.Context, limit int) ([]Event, error)
	Close() error
}

const defaultEventsLimit = 50

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return defaultEventsLimit
	}
	return limit
}

// Open returns the store selected by cfg.Backend.
func Open(cfg config.AnalyticsConfig) (Sink, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, utils.WrapIfNotNil(errors.New("analytics path is required"))
	}

	switch cfg.Backend {
	case config.AnalyticsSQLite, "":
		store, err := OpenSQLite(path)
		if err != nil {
			return nil, utils.WrapIfNotNil(err)
		}
		return store, nil
	case config.AnalyticsJSON:
		return NewJSONStore(path), nil
	default:
		return nil, utils.WrapIfNotNil(fmt.Errorf("unknown analytics backend %q", cfg.Backend))
	}
}

// Discard drops every event. It backs callers that run without analytics.
type Discard struct{}

func (Discard) Record(context.Context, Kind, map[string]any) error { return nil }
func (Discard) Counts(context.Context) (Usage, error) { return newUsage(), nil }
func (Discard) Events(context.Context, int) ([]Event, error) { return nil, nil }
func (Discard) Close() error { return nil }
