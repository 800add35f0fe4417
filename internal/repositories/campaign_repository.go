package repositories

import (
	"errors"

	"guildstore/internal/models"
	"guildstore/internal/storage/interfaces"
)

// errUnchanged aborts an update that would not modify the document.
var errUnchanged = errors.New("document unchanged")

type CampaignRepositoryInterface interface {
	GetAllFor(guildID string) ([]*models.Campaign, error)
	GetAllAcrossGuilds() (map[string][]*models.Campaign, error)
	Add(campaign *models.Campaign) error
}

type CampaignRepository struct {
	manager interfaces.SchemaManagerInterface
}

func NewCampaignRepository(manager interfaces.SchemaManagerInterface) CampaignRepositoryInterface {
	return &CampaignRepository{manager: manager}
}

func (r *CampaignRepository) GetAllFor(guildID string) ([]*models.Campaign, error) {
	doc, err := r.manager.Load()
	if err != nil {
		return nil, err
	}
	if list := doc.Campaigns[guildID]; list != nil {
		return list, nil
	}
	return []*models.Campaign{}, nil
}

func (r *CampaignRepository) GetAllAcrossGuilds() (map[string][]*models.Campaign, error) {
	doc, err := r.manager.Load()
	if err != nil {
		return nil, err
	}
	return doc.Campaigns, nil
}

func (r *CampaignRepository) Add(campaign *models.Campaign) error {
	if campaign == nil {
		return errors.New("nil campaign")
	}
	return r.manager.Update(func(doc *models.StorageDocument) error {
		doc.Campaigns[campaign.GuildID] = append(doc.Campaigns[campaign.GuildID], campaign)
		return nil
	})
}
