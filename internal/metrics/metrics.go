// Package metrics records pipeline statistics in a private Prometheus
// registry. A batch run has no scrape endpoint, so the registry is written
// to a node-exporter textfile at the end of the run.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"loanprep/pkg/frame"
	"loanprep/pkg/pipeline"
	"loanprep/pkg/schema"
)

const namespace = "loanprep"

// Recorder implements pipeline.Observer.
type Recorder struct {
	registry *prometheus.Registry

	rows     *prometheus.GaugeVec
	imputed  *prometheus.CounterVec
	features *prometheus.GaugeVec
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
}

var _ pipeline.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "partition_rows",
			Help:      "Rows in each partition after a stage.",
		}, []string{"stage", "partition"}),
		imputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imputed_values_total",
			Help:      "Missing values replaced by a train statistic.",
		}, []string{"partition", "field"}),
		features: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feature_columns",
			Help:      "Columns in the encoded feature frame.",
		}, []string{"partition"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
	r.registry.MustRegister(r.rows, r.imputed, r.features, r.runs, r.duration)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveStage records row counts for every stage, imputed value counts
// after imputation and the feature width after encoding.
func (r *Recorder) ObserveStage(stage, partition string, f *frame.Frame) {
	if f == nil {
		return
	}
	r.rows.WithLabelValues(stage, partition).Set(float64(f.Nrow()))

	switch stage {
	case pipeline.StageImpute:
		for _, c := range f.Columns() {
			field, ok := strings.CutPrefix(c.Name(), schema.MissingPrefix)
			if !ok {
				continue
			}
			n := 0
			for i := 0; i < c.Len(); i++ {
				if c.Float(i) == 1 {
					n++
				}
			}
			r.imputed.WithLabelValues(partition, field).Add(float64(n))
		}
	case pipeline.StageEncode:
		r.features.WithLabelValues(partition).Set(float64(f.Ncol()))
	}
}

// ObserveRun records the outcome and duration of a run.
func (r *Recorder) ObserveRun(elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	r.runs.WithLabelValues(outcome).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// WriteTextfile writes the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
