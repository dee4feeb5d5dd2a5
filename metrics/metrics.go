// Package metrics exposes Prometheus counters for the replication run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricNamespace = "appwrite_database_cloner"

//nolint:gochecknoglobals
var (
	collectionsReplicatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "collections_replicated_total",
		Help:      "Total number of collections whose structure was replicated.",
		Namespace: metricNamespace,
	})

	collectionErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "collection_errors_total",
		Help:      "Total number of collections whose replication failed.",
		Namespace: metricNamespace,
	})

	attributesCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "attributes_created_total",
		Help:      "Total number of attributes created on the destination.",
		Namespace: metricNamespace,
	})

	indexesCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "indexes_created_total",
		Help:      "Total number of indexes created on the destination.",
		Namespace: metricNamespace,
	})

	documentsWrittenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "documents_written_total",
		Help:      "Total number of documents written to the destination.",
		Namespace: metricNamespace,
	})

	documentsSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "documents_skipped_total",
		Help:      "Total number of documents skipped as already present.",
		Namespace: metricNamespace,
	})

	documentErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "document_errors_total",
		Help:      "Total number of document writes that failed.",
		Namespace: metricNamespace,
	})

	snapshotSizeBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      "snapshot_size_bytes",
		Help:      "Size of the intermediate snapshot file in bytes.",
		Namespace: metricNamespace,
	})
)

// Init registers all metrics with the given registry.
func Init(registry *prometheus.Registry) {
	registry.MustRegister(
		collectors.NewGoCollector(),

		collectionsReplicatedTotal,
		collectionErrorsTotal,
		attributesCreatedTotal,
		indexesCreatedTotal,
		documentsWrittenTotal,
		documentsSkippedTotal,
		documentErrorsTotal,
		snapshotSizeBytes,
	)
}

func AddCollectionReplicated()   { collectionsReplicatedTotal.Inc() }
func AddCollectionError()        { collectionErrorsTotal.Inc() }
func AddAttributesCreated(n int) { attributesCreatedTotal.Add(float64(n)) }
func AddIndexesCreated(n int)    { indexesCreatedTotal.Add(float64(n)) }
func AddDocumentWritten()        { documentsWrittenTotal.Inc() }
func AddDocumentsSkipped(n int)  { documentsSkippedTotal.Add(float64(n)) }
func AddDocumentError()          { documentErrorsTotal.Inc() }

func SetSnapshotSizeBytes(n uint64) { snapshotSizeBytes.Set(float64(n)) }
