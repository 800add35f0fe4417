package services

import (
	"guildstore/internal/models"
	"guildstore/internal/providers"
	"guildstore/internal/storage/interfaces"
)

// StoreServiceInterface covers whole-document operations.
type StoreServiceInterface interface {
	Reset() error
	Export() (*models.StorageDocument, error)
	Snapshot() uint64
}

type StoreService struct {
	manager interfaces.SchemaManagerInterface
	logger  providers.Logger
}

func NewStoreService(manager interfaces.SchemaManagerInterface, logger providers.Logger) StoreServiceInterface {
	return &StoreService{manager: manager, logger: logger}
}

// Reset wipes all demo data.
func (s *StoreService) Reset() error {
	if err := s.manager.Reset(); err != nil {
		return err
	}
	s.logger.Warnf(providers.TypeApp, "Store reset, snapshot is now %d", s.manager.GetSnapshot())
	return nil
}

func (s *StoreService) Export() (*models.StorageDocument, error) {
	return s.manager.Load()
}

func (s *StoreService) Snapshot() uint64 {
	return s.manager.GetSnapshot()
}
