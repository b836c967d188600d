package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elog_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"result"},
	)

	SignatureVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elog_signature_verifications_total",
			Help: "Total number of electronic signature verification attempts.",
		},
		[]string{"result"},
	)

	AuditRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elog_audit_records_total",
			Help: "Total number of audit trail records appended.",
		},
		[]string{"action"},
	)
)

// MustRegister registers all collectors with the default registry. Call once
// at startup.
func MustRegister() {
	prometheus.MustRegister(
		LoginsTotal,
		SignatureVerificationsTotal,
		AuditRecordsTotal,
	)
}
