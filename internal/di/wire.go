//go:build wireinject
// +build wireinject

package di

import (
	"PriceWatch/pkg/config"
	"PriceWatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,

		// Repositories and services
		ProvideFinnhubStream,
		ProvideQuoteProvider,
		ProvidePriceStore,
		ProvideSnapshotCache,
		ProvideNotifier,
		ProvideChartRenderer,
		ProvideEvaluator,

		// Use cases
		ProvideMonitorCycle,
		ProvideScheduler,

		// Application server
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}
