package internal

import (
	"guildstore/internal/providers"
	"guildstore/internal/services"
)

// Admin gives command line tools access to the store without starting the
// HTTP server.
type Admin struct {
	Store  services.StoreServiceInterface
	logger providers.Logger
}

func NewAdmin(store services.StoreServiceInterface, logger providers.Logger) *Admin {
	return &Admin{Store: store, logger: logger}
}

func (a *Admin) Close() {
	a.logger.Close()
}
