package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PagesFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pages_fetched_total",
			Help: "Listing pages fetched from the source site",
		},
	)
	ProductsScraped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "products_scraped_total",
			Help: "Unique products extracted across all categories",
		},
	)
	OracleBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_batches_total",
			Help: "Oracle enrichment batches by outcome",
		},
		[]string{"outcome"},
	)
)

func Start(port string) {
	prometheus.MustRegister(PagesFetched, ProductsScraped, OracleBatches)
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+port, nil)
}
