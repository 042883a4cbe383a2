package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// File outcomes.
const (
	OutcomeReviewed  = "reviewed"
	OutcomeUnchanged = "unchanged"
	OutcomeDeleted   = "deleted"
	OutcomeExcluded  = "excluded"
	OutcomeFailed    = "failed"
)

// Comment kinds.
const (
	KindReview   = "review"
	KindDeletion = "deletion"
	KindReply    = "reply"
	KindApology  = "apology"
	KindState    = "state"
)

// Recorder holds the run's metrics. A nil *Recorder discards everything.
type Recorder struct {
	registry *prometheus.Registry

	files            *prometheus.CounterVec
	commentsPosted   *prometheus.CounterVec
	generationErrors *prometheus.CounterVec
	generationTime   *prometheus.HistogramVec
}

// New creates a Recorder backed by its own registry.
func New() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		files: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prbot",
			Name:      "files_total",
			Help:      "Changed files seen, by what happened to them",
		}, []string{"outcome"}),
		commentsPosted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prbot",
			Name:      "comments_posted_total",
			Help:      "Comments posted to the pull request",
		}, []string{"kind"}),
		generationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prbot",
			Name:      "generation_errors_total",
			Help:      "Failed LLM calls",
		}, []string{"provider"}),
		generationTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "prbot",
			Name:      "generation_seconds",
			Help:      "LLM call duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"provider"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) File(outcome string) {
	if r == nil {
		return
	}
	r.files.WithLabelValues(outcome).Inc()
}

func (r *Recorder) CommentPosted(kind string) {
	if r == nil {
		return
	}
	r.commentsPosted.WithLabelValues(kind).Inc()
}

// Generation records one LLM call and whether it failed.
func (r *Recorder) Generation(provider string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	r.generationTime.WithLabelValues(provider).Observe(elapsed.Seconds())
	if err != nil {
		r.generationErrors.WithLabelValues(provider).Inc()
	}
}

// WriteTextfile writes all metrics to path atomically. An empty path is a
// no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
