package finance

import "github.com/prometheus/client_golang/prometheus"

var propagatedRecords = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "propagated_records_total",
		Help: "How many months fixed records were propagated to, partitioned by record kind and result.",
	},
	[]string{"kind", "result"},
)

// Metrics are the Prometheus collectors of the package.
var Metrics = []prometheus.Collector{
	propagatedRecords,
}
