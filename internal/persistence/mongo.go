package persistence

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ummahhub/community-api/internal/config"
)

// ForumCollection is the collection holding forum threads with embedded replies.
const ForumCollection = "forum_posts"

// Mongo wraps a mongo client bound to one database.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// NewMongo connects, pings and prepares the forum collection.
func NewMongo(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	opts := options.Client().ApplyURI(cfg.URI).SetTimeout(cfg.Timeout())
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	m := &Mongo{Client: client, DB: client.Database(cfg.Database)}
	if err := m.ensureForumCollection(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("connected to mongo", zap.String("database", cfg.Database))
	return m, nil
}

// Ping verifies connectivity.
func (m *Mongo) Ping(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return fmt.Errorf("mongo client not configured")
	}
	return m.Client.Ping(ctx, nil)
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) {
	if m != nil && m.Client != nil {
		_ = m.Client.Disconnect(ctx)
	}
}

// ensureForumCollection creates the forum collection and its display-order index.
func (m *Mongo) ensureForumCollection(ctx context.Context) error {
	names, err := m.DB.ListCollectionNames(ctx, bson.D{{Key: "name", Value: ForumCollection}})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	if len(names) == 0 {
		if err := m.DB.CreateCollection(ctx, ForumCollection); err != nil {
			return fmt.Errorf("create %s: %w", ForumCollection, err)
		}
	}

	_, err = m.DB.Collection(ForumCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("timestamp_desc"),
	})
	if err != nil {
		return fmt.Errorf("create timestamp index: %w", err)
	}
	return nil
}
