package internal

import (
	"net/http"

	"guildstore/internal/controllers"
	"guildstore/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController, eventsController *controllers.EventsController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/social-campaigns", http.HandlerFunc(apiController.ListSocialCampaigns))
	routers.Post("/social-campaigns", http.HandlerFunc(apiController.PublishSocialCampaign))
	routers.Post("/social-campaigns/progress", http.HandlerFunc(apiController.RecordProgress))
	routers.Get("/apps", http.HandlerFunc(apiController.ListApps))
	routers.Post("/apps/install", http.HandlerFunc(apiController.InstallApp))
	routers.Post("/apps/uninstall", http.HandlerFunc(apiController.UninstallApp))
	routers.Get("/campaigns", http.HandlerFunc(apiController.ListCampaigns))
	routers.Post("/campaigns", http.HandlerFunc(apiController.CreateCampaign))
	routers.Get("/snapshot", http.HandlerFunc(apiController.Snapshot))
	routers.Get("/export", http.HandlerFunc(apiController.Export))
	routers.Post("/reset", http.HandlerFunc(apiController.Reset))
	routers.Get("/events", http.HandlerFunc(eventsController.Stream))
	return routers
}
