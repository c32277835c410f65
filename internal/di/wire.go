//go:build wireinject
// +build wireinject

package di

import (
	"AutoTrade/internal/usecase"
	"AutoTrade/pkg/config"
	"AutoTrade/pkg/server"

	"github.com/google/wire"
)

var predictionSet = wire.NewSet(
	// Observability
	ProvideLogger,
	ProvideMetrics,

	// Data ladder
	ProvideBytesCache,
	ProvideSeriesStore,
	ProvideClickHouseClient,
	ProvideMarketSource,
	ProvideSynthetic,
	ProvideAcquirer,

	// Prediction pipeline
	ProvidePredictor,
	ProvideConfirmationBuffer,
	ProvideAssembler,
	ProvidePredictionService,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		predictionSet,

		// Event publishing
		ProvideEventPipeline,
		ProvideEventSink,

		// HTTP
		ProvideEndpointMetrics,
		ProvideRateLimiter,
		ProvidePredictHandler,
		ProvideHTTPServer,

		// Background jobs
		ProvideWarmer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil, nil
}

// InitializePredictionService wires the prediction pipeline without the HTTP surface.
func InitializePredictionService(cfg *config.Config) (*usecase.PredictionService, func(), error) {
	wire.Build(predictionSet, ProvideNopSink)
	return &usecase.PredictionService{}, nil, nil
}
