package analytics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/config"
	"github.com/stretchr/testify/suite"
)

type SQLiteStoreSuite struct {
	suite.Suite
	store *SQLiteStore
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreSuite))
}

func (s *SQLiteStoreSuite) SetupTest() {
	store, err := OpenSQLite(filepath.Join(s.T().TempDir(), "nested", "analytics.db"))
	s.Require().NoError(err)
	s.store = store
}

func (s *SQLiteStoreSuite) TearDownTest() {
	s.NoError(s.store.Close())
}

func (s *SQLiteStoreSuite) TestEmptyCountsHaveEveryKind() {
	usage, err := s.store.Counts(context.Background())
	s.Require().NoError(err)
	s.Equal(0, usage.Total)
	s.Len(usage.Counts, len(Kinds))
	for _, kind := range Kinds {
		s.Equal(0, usage.Counts[kind])
	}
}

func (s *SQLiteStoreSuite) TestRecordAndCount() {
	ctx := context.Background()
	s.Require().NoError(s.store.Record(ctx, KindQnA, map[string]any{"domain": "math"}))
	s.Require().NoError(s.store.Record(ctx, KindQnA, nil))
	s.Require().NoError(s.store.Record(ctx, KindQuiz, map[string]any{"acc": 0.5}))
	s.Require().NoError(s.store.Record(ctx, Kind("legacy"), nil))

	usage, err := s.store.Counts(ctx)
	s.Require().NoError(err)
	s.Equal(4, usage.Total)
	s.Equal(2, usage.Counts[KindQnA])
	s.Equal(1, usage.Counts[KindQuiz])
	s.NotContains(usage.Counts, Kind("legacy"))
}

func (s *SQLiteStoreSuite) TestEventsNewestFirst() {
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	s.store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	s.Require().NoError(s.store.Record(ctx, KindCoding, map[string]any{"type": "review"}))
	s.Require().NoError(s.store.Record(ctx, KindWellness, map[string]any{"len": float64(12)}))

	events, err := s.store.Events(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(KindWellness, events[0].Kind)
	s.Equal(float64(12), events[0].Payload["len"])
	s.Equal(base.Add(2*time.Second), events[0].Timestamp)
	s.NotEmpty(events[0].ID)

	events, err = s.store.Events(ctx, 1)
	s.Require().NoError(err)
	s.Len(events, 1)
}

type JSONStoreSuite struct {
	suite.Suite
	path  string
	store *JSONStore
}

func TestJSONStoreSuite(t *testing.T) {
	suite.Run(t, new(JSONStoreSuite))
}

func (s *JSONStoreSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "data", "analytics.json")
	s.store = NewJSONStore(s.path)
	s.store.now = func() time.Time { return time.Unix(1717171717, 0) }
}

func (s *JSONStoreSuite) TestMissingFileIsEmpty() {
	usage, err := s.store.Counts(context.Background())
	s.Require().NoError(err)
	s.Equal(0, usage.Total)
	s.Equal(0, usage.Counts[KindTranscripts])
}

func (s *JSONStoreSuite) TestSameSecondKeysDoNotCollide() {
	ctx := context.Background()
	s.Require().NoError(s.store.Record(ctx, KindSummaries, map[string]any{"chars": 10}))
	s.Require().NoError(s.store.Record(ctx, KindSummaries, nil))
	s.Require().NoError(s.store.Record(ctx, KindTranscripts, nil))

	data, err := os.ReadFile(s.path)
	s.Require().NoError(err)
	s.Contains(string(data), `"1717171717"`)
	s.Contains(string(data), `"1717171717.1"`)
	s.Contains(string(data), `"1717171717.2"`)

	usage, err := s.store.Counts(ctx)
	s.Require().NoError(err)
	s.Equal(3, usage.Total)
	s.Equal(2, usage.Counts[KindSummaries])

	events, err := s.store.Events(ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal("1717171717.2", events[0].ID)
	s.Equal(KindTranscripts, events[0].Kind)
}

func (s *JSONStoreSuite) TestReadsExistingFlatFile() {
	s.Require().NoError(os.MkdirAll(filepath.Dir(s.path), 0o755))
	s.Require().NoError(os.WriteFile(s.path, []byte(`{
  "1700000000": {"event": "qna", "payload": {"question": "What is a set?"}},
  "1700000001": {"event": "wellness", "payload": {"len": 20}},
  "1700000002": {"event": "other", "payload": {}}
}`), 0o644))

	usage, err := s.store.Counts(context.Background())
	s.Require().NoError(err)
	s.Equal(3, usage.Total)
	s.Equal(1, usage.Counts[KindQnA])
	s.Equal(1, usage.Counts[KindWellness])
}

func (s *JSONStoreSuite) TestCorruptFileStartsFresh() {
	s.Require().NoError(os.MkdirAll(filepath.Dir(s.path), 0o755))
	s.Require().NoError(os.WriteFile(s.path, []byte("{not-json"), 0o644))

	s.Require().NoError(s.store.Record(context.Background(), KindQuiz, nil))
	usage, err := s.store.Counts(context.Background())
	s.Require().NoError(err)
	s.Equal(1, usage.Total)
}

type OpenSuite struct {
	suite.Suite
}

func TestOpenSuite(t *testing.T) {
	suite.Run(t, new(OpenSuite))
}

func (s *OpenSuite) TestBackends() {
	dir := s.T().TempDir()

	sink, err := Open(config.AnalyticsConfig{Backend: config.AnalyticsJSON, Path: filepath.Join(dir, "a.json")})
	s.Require().NoError(err)
	s.IsType(&JSONStore{}, sink)

	sink, err = Open(config.AnalyticsConfig{Backend: config.AnalyticsSQLite, Path: filepath.Join(dir, "a.db")})
	s.Require().NoError(err)
	s.IsType(&SQLiteStore{}, sink)
	s.NoError(sink.Close())

	_, err = Open(config.AnalyticsConfig{Backend: "redis", Path: filepath.Join(dir, "x")})
	s.Error(err)

	_, err = Open(config.AnalyticsConfig{Backend: config.AnalyticsJSON})
	s.Error(err)
}

func (s *OpenSuite) TestDiscard() {
	var sink Sink = Discard{}
	s.NoError(sink.Record(context.Background(), KindQnA, nil))
	usage, err := sink.Counts(context.Background())
	s.Require().NoError(err)
	s.Equal(0, usage.Counts[KindQnA])
}
