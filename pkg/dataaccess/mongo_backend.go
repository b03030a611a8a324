package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoBackendName = "mongo_backend"

	// MongoDatabase is the default database name.
	MongoDatabase = "ticketeer"

	documentsCollection = "documents"
)

// MongoBackend stores each document as {_id: name, data: document} in one collection.
type MongoBackend struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client

	// database is the database name.
	database string
}

// NewMongoBackend creates a new Mongo backed document store.
func NewMongoBackend(l *slog.Logger, client *mongo.Client, database string) *MongoBackend {
	l = l.With(slog.String(logging.KeyDal, mongoBackendName))

	if client == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	if database == "" {
		database = MongoDatabase
	}

	return &MongoBackend{
		l:        l,
		client:   client,
		database: database,
	}
}

type storedDocument struct {
	Data bson.RawValue `bson:"data"`
}

// Load gets the document by name.
func (m *MongoBackend) Load(ctx context.Context, name string, v any) error {
	collection := m.client.Database(m.database).Collection(documentsCollection)

	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(mongoBackendName, "load_"+name, m.database, documentsCollection).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(mongoBackendName, "load_"+name, m.database, documentsCollection))
	defer t.ObserveDuration()

	stored := new(storedDocument)
	err := collection.FindOne(ctx, bson.M{"_id": name}).Decode(stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrDocumentNotFound
	} else if err != nil {
		return fmt.Errorf("error getting document %s: %w", name, err)
	}

	if err := stored.Data.Unmarshal(v); err != nil {
		return fmt.Errorf("error decoding document %s: %w", name, err)
	}
	return nil
}

// Save replaces the document, creating it if needed.
func (m *MongoBackend) Save(ctx context.Context, name string, v any) error {
	collection := m.client.Database(m.database).Collection(documentsCollection)

	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(mongoBackendName, "save_"+name, m.database, documentsCollection).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(mongoBackendName, "save_"+name, m.database, documentsCollection))
	defer t.ObserveDuration()

	opts := options.Replace().SetUpsert(true)
	_, err := collection.ReplaceOne(ctx, bson.M{"_id": name}, bson.M{
		"_id":        name,
		"data":       v,
		"updated_at": time.Now().UTC(),
	}, opts)
	if err != nil {
		return fmt.Errorf("error saving document %s: %w", name, err)
	}
	return nil
}

// Ping pings the Mongo deployment.
func (m *MongoBackend) Ping(ctx context.Context) error {
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues("health_check", "ping", "-", "-"))
	defer t.ObserveDuration()
	monitoring.MongoTotalRequests.WithLabelValues("health_check", "ping", "-", "-").Inc()

	if err := m.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (m *MongoBackend) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("error disconnecting from mongo: %w", err)
	}
	return nil
}
