package interfaces

import "guildstore/internal/models"

type SchemaManagerInterface interface {
	Load() (*models.StorageDocument, error)
	Save(doc *models.StorageDocument) error
	Reset() error
	Update(fn func(doc *models.StorageDocument) error) error
	Subscribe(listener func()) (unsubscribe func())
	SubscribeEvents(listener func(models.ChangeEvent)) (unsubscribe func())
	GetSnapshot() uint64
	ListenerCount() int
	NotifyExternalChange()
}
