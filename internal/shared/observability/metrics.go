package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "declscan_parsing_seconds",
		Help:    "Time spent parsing a unit of source text.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	ParseFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "declscan_parse_failures_total",
		Help: "Total number of source units rejected by the parser.",
	}, []string{"language"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "declscan_analysis_seconds",
		Help:    "Time spent on high-level analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	FilesAnalyzedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "declscan_files_analyzed_total",
		Help: "Total number of files analyzed successfully.",
	})

	DeclarationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "declscan_declarations_total",
		Help: "Total number of top-level declarations counted, by kind.",
	}, []string{"kind"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "declscan_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	HistorySnapshotsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "declscan_history_snapshots_total",
		Help: "Total number of scan snapshots persisted.",
	})
)
