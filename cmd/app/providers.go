package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/eclatderm/visage/internal/domain/analysis"
	"github.com/eclatderm/visage/internal/domain/catalog"
	"github.com/eclatderm/visage/internal/infra/analysiscache"
	"github.com/eclatderm/visage/internal/infra/catalogrepo"
	"github.com/eclatderm/visage/internal/infra/config"
	"github.com/eclatderm/visage/internal/infra/llm/chatgpt"
	"github.com/eclatderm/visage/internal/infra/photostore"
)

func provideAnalysisConfig(cfg *config.Config) analysis.Config {
	return analysis.Config{
		Model:          cfg.LLM.Model,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
		RequestTimeout: cfg.LLM.RequestTimeout,
		MaxPhotos:      cfg.Analysis.MaxPhotos,
		MaxPhotoBytes:  cfg.Analysis.MaxPhotoBytes,
		CacheTTL:       cfg.Analysis.CacheTTL,
	}
}

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.RequestTimeout)
}

func providePhotoStore(cfg *config.Config, logger *slog.Logger) analysis.PhotoStore {
	if cfg.PhotoStore.Backend == "r2" {
		store, err := photostore.NewR2Store(
			cfg.PhotoStore.Endpoint,
			cfg.PhotoStore.AccessKey,
			cfg.PhotoStore.SecretKey,
			cfg.PhotoStore.Bucket,
			cfg.PhotoStore.Region,
			logger,
		)
		if err != nil {
			logger.Error("failed to initialize r2 photo store, using memory store", "error", err)
			return photostore.NewMemoryStore()
		}
		logger.Info("r2 photo store enabled", "bucket", cfg.PhotoStore.Bucket)
		return store
	}
	return photostore.NewMemoryStore()
}

func provideCatalogRepository(cfg *config.Config, logger *slog.Logger) catalog.Repository {
	dsn := strings.TrimSpace(cfg.Catalog.Postgres.DSN)
	if dsn != "" {
		poolConfig, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			logger.Error("invalid catalog postgres dsn, using seed file", "error", err)
			return seedRepository(cfg, logger)
		}
		if cfg.Catalog.Postgres.MaxConns > 0 {
			poolConfig.MaxConns = cfg.Catalog.Postgres.MaxConns
		}
		if cfg.Catalog.Postgres.MinConns > 0 {
			poolConfig.MinConns = cfg.Catalog.Postgres.MinConns
		}
		pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			logger.Error("failed to initialize catalog postgres pool, using seed file", "error", err)
			return seedRepository(cfg, logger)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("catalog postgres ping failed, using seed file", "error", err)
			pool.Close()
			return seedRepository(cfg, logger)
		}
		logger.Info("catalog postgres repository enabled")
		return catalogrepo.NewPostgresRepository(pool)
	}
	return seedRepository(cfg, logger)
}

func seedRepository(cfg *config.Config, logger *slog.Logger) catalog.Repository {
	repo, err := catalogrepo.NewMemoryRepositoryFromFile(cfg.Catalog.SeedFile)
	if err != nil {
		logger.Warn("catalog seed file unavailable, catalog resolves to placeholders", "file", cfg.Catalog.SeedFile, "error", err)
		return catalogrepo.NewMemoryRepository(nil)
	}
	return repo
}

func provideResultStore(cfg *config.Config, logger *slog.Logger) analysis.ResultStore {
	if cfg.Cache.RedisEnabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return analysiscache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return analysiscache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		} else {
			logger.Info("valkey analysis cache enabled", "addr", cfg.Cache.RedisAddr)
			return analysiscache.NewValkeyStore(client, "analysis")
		}
	}
	return analysiscache.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.RedisAddr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.RedisAddr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.RedisAddr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
