//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/eclatderm/visage/internal/bootstrap"
	"github.com/eclatderm/visage/internal/domain/analysis"
	"github.com/eclatderm/visage/internal/domain/catalog"
	"github.com/eclatderm/visage/internal/infra/config"
	"github.com/eclatderm/visage/internal/infra/llm/chatgpt"
	httpiface "github.com/eclatderm/visage/internal/interface/http"
	"github.com/eclatderm/visage/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAnalysisConfig,
		provideChatGPTClient,
		providePhotoStore,
		provideCatalogRepository,
		provideResultStore,
		catalog.NewResolver,
		analysis.NewService,
		wire.Bind(new(analysis.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(analysis.ProductResolver), new(*catalog.Resolver)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
