//go:build wireinject
// +build wireinject

package app

import (
	"context"
	"log"
	"os"

	"github.com/google/wire"
	"go.uber.org/zap"

	v1routes "github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/api/v1/routes"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/cache"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/gateway"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/job"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/jobstore"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/search"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/storage/upload"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/storage/vector"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/config"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/logger"
)

func provideLogger() *zap.SugaredLogger {
	development := os.Getenv("ENVIRONMENT") != "production"
	return logger.MustNew(development).Sugar()
}

// provideJobStore picks the durable sqlite store when JOB_STORE_PATH is set,
// otherwise jobs live in memory and vanish on restart.
func provideJobStore() jobstore.Store {
	path := config.GetJobStorePath()
	if path == "" {
		return jobstore.NewMemoryStore()
	}
	store, err := jobstore.NewSQLiteStore(path)
	if err != nil {
		log.Fatalf("failed to open job store at %s: %v", path, err)
	}
	return store
}

func provideGateway(zlog *zap.SugaredLogger) *gateway.TwelveLabsClient {
	apiKeys, err := config.GetAPIKeys()
	if err != nil {
		log.Fatalf("failed to load API keys: %v", err)
	}
	tuning, err := config.GetGatewayTuning()
	if err != nil {
		log.Fatalf("invalid provider configuration: %v", err)
	}
	nc := config.GetNetworkConfig()
	opts := gateway.Options{
		CallTimeout:   tuning.CallTimeout,
		MaxRetries:    tuning.MaxRetries,
		RetryBackoff:  tuning.RetryBackoff,
		TextEmbedWait: tuning.TextEmbedWait,
	}
	return gateway.NewTwelveLabsClient(nc.TwelveLabsBaseURL, apiKeys.TwelveLabs, opts, zlog)
}

func provideTextEmbedder(client *gateway.TwelveLabsClient) gateway.TextEmbedder {
	provider := config.GetEmbeddingProvider()
	apiKeys, err := config.GetAPIKeys()
	if err != nil {
		log.Fatalf("failed to load API keys: %v", err)
	}
	if err := config.RequireProviderKey(apiKeys, provider); err != nil {
		log.Fatalf("%v", err)
	}
	if provider == "openai" {
		return gateway.NewOpenAITextEmbedder(apiKeys.OpenAI)
	}
	return client
}

func provideSinks() []vector.Sink {
	nc := config.GetNetworkConfig()

	qdrant, err := vector.NewQdrantSink(nc.QdrantAddr, "video_segments", model.VectorDimension)
	if err != nil {
		log.Fatalf("failed to connect qdrant at %s: %v", nc.QdrantAddr, err)
	}

	db, err := vector.OpenPostgres(nc.GetPostgresConnectionString())
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	pg := vector.NewPgVectorSink(db)
	if err := pg.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("failed to prepare pgvector schema: %v", err)
	}

	return []vector.Sink{qdrant, pg}
}

func provideUploads() upload.Service {
	svc, err := upload.NewMinioService()
	if err != nil {
		log.Fatalf("failed to connect object store: %v", err)
	}
	return svc
}

func provideCache(zlog *zap.SugaredLogger) cache.EmbeddingCache {
	nc := config.GetNetworkConfig()
	if nc.RedisAddr == "" {
		return cache.NoopCache{}
	}
	return cache.NewRedisCache(nc.RedisAddr, zlog)
}

// InitializeServiceContainer wires the full application graph
func InitializeServiceContainer() *v1routes.ServiceContainer {
	wire.Build(
		provideLogger,
		provideJobStore,
		provideGateway,
		provideTextEmbedder,
		provideSinks,
		provideUploads,
		provideCache,
		wire.Bind(new(gateway.UnderstandingProvider), new(*gateway.TwelveLabsClient)),
		wire.Bind(new(gateway.EmbeddingProvider), new(*gateway.TwelveLabsClient)),
		wire.Bind(new(job.VisibilityChecker), new(upload.Service)),
		job.NewUnderstandingManager,
		job.NewEmbeddingManager,
		search.NewCoordinator,
		wire.Struct(new(v1routes.ServiceContainer), "*"),
	)
	return &v1routes.ServiceContainer{}
}
