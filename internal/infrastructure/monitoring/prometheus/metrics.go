package prometheus

import (
	"time"
)

// DefaultStageBuckets suit file-sized batch stages.
var DefaultStageBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120}

// RunMetrics holds the metrics of one cleaning or compilation run.
type RunMetrics struct {
	SourceRowsTotal             CounterVec
	IdentifiersMalformedTotal   CounterVec
	SubstancesUnidentifiedTotal CounterVec
	PassMatchesTotal            CounterVec
	PassInsertsTotal            CounterVec
	MergeConflictsTotal         CounterVec
	RegistrySubstances          GaugeVec
	ReportRows                  GaugeVec
	StageDuration               HistogramVec
}

// NewRunMetrics registers all run metrics on collector.
func NewRunMetrics(collector MetricsCollector) *RunMetrics {
	m := &RunMetrics{}

	// Cleaning
	m.SourceRowsTotal = collector.RegisterCounter("source_rows_total", "Raw source rows read", "source")
	m.IdentifiersMalformedTotal = collector.RegisterCounter("identifiers_malformed_total", "Identifier or classification cells that failed validation", "source", "kind")
	m.SubstancesUnidentifiedTotal = collector.RegisterCounter("substances_unidentified_total", "Rows with no identifier in any column", "source")

	// Reconciliation
	m.PassMatchesTotal = collector.RegisterCounter("pass_matches_total", "Registry entities updated by an update pass", "pass")
	m.PassInsertsTotal = collector.RegisterCounter("pass_inserts_total", "Entities inserted by an update pass on a registry miss", "pass")
	m.MergeConflictsTotal = collector.RegisterCounter("merge_conflicts_total", "Merges refused because identifiers disagreed")
	m.RegistrySubstances = collector.RegisterGauge("registry_substances", "Substances held by the registry")
	m.ReportRows = collector.RegisterGauge("report_rows", "Data rows in the compiled report")

	m.StageDuration = collector.RegisterHistogram("stage_duration_seconds", "Wall time per pipeline stage", DefaultStageBuckets, "stage")

	return m
}

// SourceRow counts one raw row read from source.
func (m *RunMetrics) SourceRow(source string) {
	m.SourceRowsTotal.WithLabelValues(source).Inc()
}

// MalformedIdentifier counts one failed validation of kind in source.
func (m *RunMetrics) MalformedIdentifier(source, kind string) {
	m.IdentifiersMalformedTotal.WithLabelValues(source, kind).Inc()
}

// Unidentified counts one row without any identifier.
func (m *RunMetrics) Unidentified(source string) {
	m.SubstancesUnidentifiedTotal.WithLabelValues(source).Inc()
}

// PassMatches adds n matched entities to pass.
func (m *RunMetrics) PassMatches(pass string, n int) {
	if n > 0 {
		m.PassMatchesTotal.WithLabelValues(pass).Add(float64(n))
	}
}

// PassInsert counts one insertion by pass.
func (m *RunMetrics) PassInsert(pass string) {
	m.PassInsertsTotal.WithLabelValues(pass).Inc()
}

// MergeConflict counts one refused merge.
func (m *RunMetrics) MergeConflict() {
	m.MergeConflictsTotal.WithLabelValues().Inc()
}

// RegistrySize records the number of registered substances.
func (m *RunMetrics) RegistrySize(n int) {
	m.RegistrySubstances.WithLabelValues().Set(float64(n))
}

// ReportSize records the number of report rows.
func (m *RunMetrics) ReportSize(n int) {
	m.ReportRows.WithLabelValues().Set(float64(n))
}

// ObserveStage records the duration of one stage.
func (m *RunMetrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// StageTimer starts a Timer for stage.
func (m *RunMetrics) StageTimer(stage string) *Timer {
	return NewTimer(m.StageDuration.WithLabelValues(stage))
}

//Personal.AI order the ending
