package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MongoLatency is the duration of Mongo queries.
	MongoLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dataaccess_mongo_latency",
			Help: "Duration of Mongo queries",
		},
		[]string{"dal", "query", "database", "collection"},
	)

	// MongoTotalRequests is the total number of Mongo requests.
	MongoTotalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataaccess_mongo_total_requests",
			Help: "Total number of Mongo requests",
		},
		[]string{"dal", "query", "database", "collection"},
	)

	// FileLatency is the duration of document file reads and writes.
	FileLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dataaccess_file_latency",
			Help: "Duration of document file operations",
		},
		[]string{"operation", "document"},
	)

	// FileTotalRequests is the total number of document file operations.
	FileTotalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataaccess_file_total_requests",
			Help: "Total number of document file operations",
		},
		[]string{"operation", "document"},
	)

	// DocumentSaveErrors is the total number of failed document saves.
	DocumentSaveErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataaccess_document_save_errors",
			Help: "Total number of failed document saves",
		},
		[]string{"document"},
	)
)
