//go:build wireinject
// +build wireinject

package di

import (
	"TechScreener/pkg/config"
	"TechScreener/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideScanLocker,
		ProvideScreenerProvider,

		// Use cases
		ProvideScreener,

		// HTTP
		ProvideRateLimiter,
		ProvideScreenerHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
