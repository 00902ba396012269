package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "issue_insights"

// Recorder collects the metrics of one run on its own registry, so a run
// never sees values left by another.
type Recorder struct {
	registry *prometheus.Registry

	IssuesLoaded     prometheus.Counter
	RecordsSkipped   *prometheus.CounterVec
	GraphNodes       prometheus.Gauge
	GraphEdges       prometheus.Gauge
	AnalysisDuration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with a fresh registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		IssuesLoaded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_loaded_total",
			Help:      "Issues decoded from the dataset",
		}),
		// stage is "decode" for records the loader could not parse and
		// "build" for issues the graph builder left out
		RecordsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Malformed records skipped",
		}, []string{"stage"}),
		GraphNodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Nodes in the interaction graph",
		}),
		GraphEdges: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Edges in the interaction graph",
		}),
		AnalysisDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of an analysis run in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"feature"}),
	}
}

// Registry exposes the underlying registry as a gatherer
func (r *Recorder) Registry() prometheus.Gatherer {
	return r.registry
}

// ObserveLoad records a finished dataset load
func (r *Recorder) ObserveLoad(loaded, skipped int) {
	r.IssuesLoaded.Add(float64(loaded))
	r.RecordsSkipped.WithLabelValues("decode").Add(float64(skipped))
}

// ObserveGraph records the size of a built graph and the issues it skipped
func (r *Recorder) ObserveGraph(nodes, edges, skipped int) {
	r.GraphNodes.Set(float64(nodes))
	r.GraphEdges.Set(float64(edges))
	r.RecordsSkipped.WithLabelValues("build").Add(float64(skipped))
}

// ObserveAnalysis records how long a feature took
func (r *Recorder) ObserveAnalysis(feature int, d time.Duration) {
	r.AnalysisDuration.WithLabelValues(strconv.Itoa(feature)).Observe(d.Seconds())
}

// WriteFile writes all metrics in the text exposition format, for the
// node_exporter textfile collector
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
