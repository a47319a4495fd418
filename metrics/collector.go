// Package metrics exposes pipeline activity as Prometheus metrics
package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bububa/uxcrew/pipeline"
)

const DefaultNamespace = "uxcrew"

// Failure kinds of the stage failures counter
const (
	FailureCall       = "call"
	FailureExtraction = "extraction"
	FailureTimeout    = "timeout"
)

// Collector is a pipeline.Observer recording stage and run metrics in its own registry
type Collector struct {
	registry      *prometheus.Registry
	stageDuration *prometheus.HistogramVec
	stageFailures *prometheus.CounterVec
	runs          *prometheus.CounterVec
	tokens        *prometheus.CounterVec
	runDuration   prometheus.Histogram
}

var _ pipeline.Observer = (*Collector)(nil)

// New returns a Collector, the namespace defaults to DefaultNamespace
func New(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of stage model calls.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		}, []string{"stage"}),
		stageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Failed stages by kind.",
		}, []string{"stage", "kind"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished runs by final state.",
		}, []string{"state"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Tokens by stage, input and output as reported by the provider, prompt as estimated locally.",
		}, []string{"stage", "kind"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of whole runs.",
			Buckets:   prometheus.ExponentialBuckets(5, 2, 8),
		}),
	}
	c.registry.MustRegister(
		c.stageDuration,
		c.stageFailures,
		c.runs,
		c.tokens,
		c.runDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the registry holding the metrics
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) StageStarted(context.Context, string, *pipeline.Stage) {}

func (c *Collector) StageFinished(_ context.Context, _ string, res *pipeline.StageResult) {
	c.stageDuration.WithLabelValues(res.Name).Observe(res.Elapsed.Seconds())
	c.tokens.WithLabelValues(res.Name, "prompt").Add(float64(res.PromptTokens))
	if res.Usage != nil {
		c.tokens.WithLabelValues(res.Name, "input").Add(float64(res.Usage.InputTokens))
		c.tokens.WithLabelValues(res.Name, "output").Add(float64(res.Usage.OutputTokens))
	}
}

func (c *Collector) StageFailed(_ context.Context, _ string, stage *pipeline.Stage, err error) {
	c.stageFailures.WithLabelValues(stage.Name, FailureKind(err)).Inc()
}

func (c *Collector) RunFinished(_ context.Context, result *pipeline.Result) {
	c.runs.WithLabelValues(result.State.String()).Inc()
	c.runDuration.Observe(result.Elapsed.Seconds())
}

// FailureKind classifies a stage error
func FailureKind(err error) string {
	var extractionErr *pipeline.ExtractionError
	switch {
	case errors.As(err, &extractionErr):
		return FailureExtraction
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	}
	return FailureCall
}
