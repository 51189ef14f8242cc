package metrics

import "github.com/prometheus/client_golang/prometheus"

// ImportMetrics tracks feed import row outcomes per source file.
type ImportMetrics struct {
	rows    *prometheus.CounterVec
	skipped *prometheus.CounterVec
	denied  *prometheus.CounterVec
}

// NewImportMetrics registers import counters on the provided registerer.
func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	if reg == nil {
		return &ImportMetrics{}
	}
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_total",
		Help: "Feed rows applied to the catalog.",
	}, []string{"source"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_skipped_total",
		Help: "Feed rows rejected by shape or validation checks.",
	}, []string{"source"})
	denied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_denied_total",
		Help: "Stock rows referencing products missing from the catalog.",
	}, []string{"source"})
	reg.MustRegister(rows, skipped, denied)
	return &ImportMetrics{rows: rows, skipped: skipped, denied: denied}
}

// AddRows records rows applied for the named source.
func (m *ImportMetrics) AddRows(source string, n int) {
	if m == nil || m.rows == nil || n <= 0 {
		return
	}
	m.rows.WithLabelValues(normalizeLabel(source)).Add(float64(n))
}

// AddSkipped records rows rejected for the named source.
func (m *ImportMetrics) AddSkipped(source string, n int) {
	if m == nil || m.skipped == nil || n <= 0 {
		return
	}
	m.skipped.WithLabelValues(normalizeLabel(source)).Add(float64(n))
}

// AddDenied records stock rows that matched no catalog product.
func (m *ImportMetrics) AddDenied(source string, n int) {
	if m == nil || m.denied == nil || n <= 0 {
		return
	}
	m.denied.WithLabelValues(normalizeLabel(source)).Add(float64(n))
}
