package transcript

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage names used as metric labels.
const (
	StageCaptions   = "captions"
	StageTimedText  = "timedtext"
	StageCache      = "cache"
	StageDownload   = "download"
	StageTranscribe = "transcribe"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeHit     = "hit"
	OutcomeMiss    = "miss"
)

// Metrics counts stage outcomes and times whole acquisitions.
type Metrics struct {
	stageTotal          *prometheus.CounterVec
	acquisitionDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors with reg; nil means the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Labels:
		//   - stage: captions, timedtext, cache, download, transcribe
		//   - outcome: success, failure, hit, miss
		stageTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnnext_transcript_stage_total",
				Help: "Transcript acquisition stage attempts by outcome",
			},
			[]string{"stage", "outcome"},
		),
		// Labels:
		//   - source: captions, timedtext, speech, or none on failure
		acquisitionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "learnnext_transcript_acquisition_duration_seconds",
				Help:    "Duration of transcript acquisitions in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
			},
			[]string{"source"},
		),
	}
}

func (m *Metrics) recordStage(stage, outcome string) {
	if m == nil {
		return
	}
	m.stageTotal.WithLabelValues(stage, outcome).Inc()
}

func (m *Metrics) observeAcquisition(source Source, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := string(source)
	if label == "" {
		label = "none"
	}
	m.acquisitionDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}
