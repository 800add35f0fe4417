//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"guildstore/internal"
	"guildstore/internal/controllers"
	"guildstore/internal/providers"
	"guildstore/internal/repositories"
	"guildstore/internal/services"
	"guildstore/internal/storage"
	"guildstore/internal/structures"
)

var storeSet = wire.NewSet(
	providers.NewConfigProvider,
	providers.NewLogProvider,
	providers.NewMetricsProvider,

	storage.NewCompressorProvider,
	storage.NewKeyValueProvider,
	storage.NewSchemaManagerProvider,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		storeSet,
		providers.NewInstrumentedCacheProvider,
		providers.NewNotifierProvider,
		storage.NewWatcherProvider,

		repositories.NewSocialCampaignRepository,
		repositories.NewAppInstallationRepository,
		repositories.NewCampaignRepository,
		services.NewSocialCampaignService,
		services.NewAppService,
		services.NewCampaignService,
		services.NewStoreService,

		controllers.NewApiController,
		controllers.NewHealthController,
		controllers.NewEventsController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil, nil
}

func InitAdmin(cfg *structures.CliFlags) (*internal.Admin, func(), error) {

	wire.Build(
		storeSet,
		services.NewStoreService,
		internal.NewAdmin,
	)

	return nil, nil, nil
}
