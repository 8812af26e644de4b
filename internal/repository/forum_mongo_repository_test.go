package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ummahhub/community-api/internal/config"
	"github.com/ummahhub/community-api/internal/persistence"
)

func TestForumMongoRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Skipf("mongo container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	store, err := persistence.NewMongo(ctx, config.MongoConfig{URI: uri, Database: "community_test", TimeoutSeconds: 10}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		store.Close(closeCtx)
	})

	repo := NewForumMongoRepository(store.DB)
	require.NoError(t, repo.Ping(ctx))

	runForumRepositoryContract(t, repo, primitive.NewObjectID().Hex())
}
