package repositories

import (
	"errors"

	"guildstore/internal/models"
	"guildstore/internal/storage/interfaces"
)

var ErrNotFound = errors.New("not found")

type SocialCampaignRepositoryInterface interface {
	GetAllFor(guildID string) ([]*models.SocialCampaign, error)
	GetAllAcrossGuilds() (map[string][]*models.SocialCampaign, error)
	Get(guildID, id string) (*models.SocialCampaign, error)
	Add(campaign *models.SocialCampaign) error
	IncrementCounters(guildID, id string, delta models.CounterDelta) (*models.SocialCampaign, error)
}

type SocialCampaignRepository struct {
	manager interfaces.SchemaManagerInterface
}

func NewSocialCampaignRepository(manager interfaces.SchemaManagerInterface) SocialCampaignRepositoryInterface {
	return &SocialCampaignRepository{manager: manager}
}

// GetAllFor returns the guild's campaigns in insertion order, or an empty
// slice for an unknown guild.
func (r *SocialCampaignRepository) GetAllFor(guildID string) ([]*models.SocialCampaign, error) {
	doc, err := r.manager.Load()
	if err != nil {
		return nil, err
	}
	if list := doc.SocialCampaigns[guildID]; list != nil {
		return list, nil
	}
	return []*models.SocialCampaign{}, nil
}

func (r *SocialCampaignRepository) GetAllAcrossGuilds() (map[string][]*models.SocialCampaign, error) {
	doc, err := r.manager.Load()
	if err != nil {
		return nil, err
	}
	return doc.SocialCampaigns, nil
}

func (r *SocialCampaignRepository) Get(guildID, id string) (*models.SocialCampaign, error) {
	doc, err := r.manager.Load()
	if err != nil {
		return nil, err
	}
	if c := findSocialCampaign(doc, guildID, id); c != nil {
		return c, nil
	}
	return nil, ErrNotFound
}

// Add appends the campaign to its guild. The derived reward amounts are
// computed here, once, and stored with the record.
func (r *SocialCampaignRepository) Add(campaign *models.SocialCampaign) error {
	if campaign == nil {
		return errors.New("nil campaign")
	}
	campaign.ApplyTotals(models.CalculateTotals(campaign.RewardPool, campaign.TotalWinners))

	return r.manager.Update(func(doc *models.StorageDocument) error {
		doc.SocialCampaigns[campaign.GuildID] = append(doc.SocialCampaigns[campaign.GuildID], campaign)
		return nil
	})
}

// IncrementCounters adds delta to the campaign's progress counters. Counters
// never drop below zero.
func (r *SocialCampaignRepository) IncrementCounters(guildID, id string, delta models.CounterDelta) (*models.SocialCampaign, error) {
	var updated *models.SocialCampaign
	err := r.manager.Update(func(doc *models.StorageDocument) error {
		c := findSocialCampaign(doc, guildID, id)
		if c == nil {
			return ErrNotFound
		}
		c.ParticipantsCount = max(0, c.ParticipantsCount+delta.Participants)
		c.CompletedCount = max(0, c.CompletedCount+delta.Completed)
		c.RewardsClaimedCount = max(0, c.RewardsClaimedCount+delta.RewardsClaimed)
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func findSocialCampaign(doc *models.StorageDocument, guildID, id string) *models.SocialCampaign {
	for _, c := range doc.SocialCampaigns[guildID] {
		if c != nil && c.ID == id {
			return c
		}
	}
	return nil
}
