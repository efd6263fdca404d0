package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/folio/config"
	"github.com/use-agent/folio/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo stores one document per snapshot. History is kept: every scrape
// is inserted, and Latest reads the newest by scraped_at.
type Mongo struct {
	client    *mongo.Client
	snapshots *mongo.Collection
	timeout   time.Duration
}

// NewMongo connects, pings and ensures the snapshot indexes exist.
func NewMongo(ctx context.Context, cfg config.MongoConfig) (*Mongo, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}

	m := &Mongo{
		client:    client,
		snapshots: client.Database(cfg.Database).Collection(cfg.Collection),
		timeout:   cfg.Timeout,
	}
	if err := m.createIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	slog.Info("snapshot store connected", "database", cfg.Database, "collection", cfg.Collection)
	return m, nil
}

func (m *Mongo) createIndexes(ctx context.Context) error {
	_, err := m.snapshots.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "normalized_url", Value: 1}, {Key: "scraped_at", Value: -1}}},
		{Keys: bson.D{{Key: "scraped_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("can't create indexes: %w", err)
	}
	return nil
}

func (m *Mongo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

// SaveSnapshot validates r, diffs it against the latest stored snapshot
// and inserts it.
func (m *Mongo) SaveSnapshot(ctx context.Context, r *models.ScrapeResult) (*Snapshot, error) {
	if err := Validate(r); err != nil {
		return nil, storageError("result does not match the snapshot schema", err)
	}

	prev, err := m.Latest(ctx, r.URL)
	if err != nil {
		return nil, err
	}
	snap := NewSnapshot(r, prev)

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()
	if _, err := m.snapshots.InsertOne(ctx, snap); err != nil {
		return nil, storageError("failed to insert snapshot", err)
	}
	return snap, nil
}

// Latest returns the newest snapshot for url, or nil.
func (m *Mongo) Latest(ctx context.Context, url string) (*Snapshot, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "scraped_at", Value: -1}})
	var snap Snapshot
	err := m.snapshots.FindOne(ctx, bson.M{"normalized_url": NormalizeURL(url)}, opts).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("failed to read snapshot", err)
	}
	return &snap, nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
