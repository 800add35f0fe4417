package services

import (
	"time"

	"github.com/google/uuid"

	"guildstore/internal/models"
	"guildstore/internal/providers"
	"guildstore/internal/repositories"
)

type CampaignDraft struct {
	GuildID     string            `json:"guildId" validate:"required"`
	Name        string            `json:"name" validate:"required|maxLen:200"`
	Description string            `json:"description"`
	Type        string            `json:"type"`
	Status      string            `json:"status" validate:"in:draft,active,paused,completed"`
	Budget      float64           `json:"budget"`
	StartDate   *models.Timestamp `json:"startDate,omitempty"`
	EndDate     *models.Timestamp `json:"endDate,omitempty"`
}

type CampaignServiceInterface interface {
	Create(draft *CampaignDraft) (*models.Campaign, error)
	List(guildID string) ([]*models.Campaign, error)
	ListAll() (map[string][]*models.Campaign, error)
}

type CampaignService struct {
	repo   repositories.CampaignRepositoryInterface
	logger providers.Logger
	now    func() time.Time
}

func NewCampaignService(repo repositories.CampaignRepositoryInterface, logger providers.Logger) CampaignServiceInterface {
	return &CampaignService{repo: repo, logger: logger, now: time.Now}
}

func (s *CampaignService) Create(draft *CampaignDraft) (*models.Campaign, error) {
	if draft == nil {
		return nil, invalid("empty draft")
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	if draft.Budget < 0 {
		return nil, invalid("budget must not be negative")
	}

	now := models.NewTimestamp(s.now())
	start := now
	if draft.StartDate != nil {
		start = *draft.StartDate
	}
	if draft.EndDate != nil && draft.EndDate.Before(start.Time) {
		return nil, invalid("endDate is before startDate")
	}

	status := models.CampaignStatus(draft.Status)
	if status == "" {
		status = models.StatusDraft
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	campaign := &models.Campaign{
		ID:          id.String(),
		GuildID:     draft.GuildID,
		Name:        draft.Name,
		Description: draft.Description,
		Type:        draft.Type,
		Status:      status,
		Budget:      draft.Budget,
		StartDate:   start,
		EndDate:     draft.EndDate,
		CreatedAt:   now,
	}
	if err := s.repo.Add(campaign); err != nil {
		return nil, err
	}
	s.logger.Infof(providers.TypePost, "Created campaign %s for guild %s", campaign.ID, campaign.GuildID)
	return campaign, nil
}

func (s *CampaignService) List(guildID string) ([]*models.Campaign, error) {
	return s.repo.GetAllFor(guildID)
}

func (s *CampaignService) ListAll() (map[string][]*models.Campaign, error) {
	return s.repo.GetAllAcrossGuilds()
}
