package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	pipelineName = "pipeline_name"
	runStatus    = "status"
)

// Registry holds every collector of this package. It is gathered by Push.
var Registry = prometheus.NewRegistry()

var (
	// Runs counts finished runs by outcome
	Runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dwh_etl_runs_total",
		Help: "Number of finished pipeline runs by status",
	}, []string{pipelineName, runStatus})

	// RunDuration is the wall time of a run from lock to outcome
	RunDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dwh_etl_run_duration_seconds",
		Help:    "Pipeline run duration in seconds",
		Buckets: []float64{1, 10, 30, 60, 300, 900, 1800, 3600},
	}, []string{pipelineName})

	// LastSuccess is the unix time of the last successful run
	LastSuccess = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dwh_etl_last_success_timestamp_seconds",
		Help: "Unix time the last successful run finished",
	}, []string{pipelineName})

	GroupsExtracted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dwh_etl_groups_extracted_total",
		Help: "Number of correlated groups produced by extraction",
	}, []string{pipelineName})

	RowsLoaded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dwh_etl_rows_loaded_total",
		Help: "Number of fact rows committed to the staging table",
	}, []string{pipelineName})

	ChunksExecuted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dwh_etl_chunks_executed_total",
		Help: "Number of chunk commands executed inside load transactions",
	}, []string{pipelineName})

	// DataQualityIssues counts source values rejected during transform
	DataQualityIssues = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dwh_etl_data_quality_issues_total",
		Help: "Number of source values rejected as out of range",
	}, []string{pipelineName})
)

func init() {
	Registry.MustRegister(
		Runs,
		RunDuration,
		LastSuccess,
		GroupsExtracted,
		RowsLoaded,
		ChunksExecuted,
		DataQualityIssues,
	)
}

func Reset() {
	Runs.Reset()
	RunDuration.Reset()
	LastSuccess.Reset()
	GroupsExtracted.Reset()
	RowsLoaded.Reset()
	ChunksExecuted.Reset()
	DataQualityIssues.Reset()
}

// Push sends the registry to a Pushgateway under the given job. It does
// nothing when gatewayURL is empty.
func Push(ctx context.Context, gatewayURL, job string) error {
	if gatewayURL == "" {
		return nil
	}
	if job == "" {
		job = "dwh-etl"
	}
	return push.New(gatewayURL, job).Gatherer(Registry).PushContext(ctx)
}
