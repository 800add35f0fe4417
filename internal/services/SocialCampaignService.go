package services

import (
	"time"

	"github.com/google/uuid"

	"guildstore/internal/models"
	"guildstore/internal/providers"
	"guildstore/internal/repositories"
)

// SocialCampaignDraft is what a guild admin submits when publishing.
type SocialCampaignDraft struct {
	GuildID            string                     `json:"guildId" validate:"required"`
	Name               string                     `json:"name" validate:"required|maxLen:200"`
	Tasks              []models.SocialTask        `json:"tasks"`
	DistributionMethod string                     `json:"distributionMethod" validate:"required|in:fcfs,raffle,kol"`
	Blockchain         string                     `json:"blockchain"`
	Token              string                     `json:"token"`
	RewardPool         float64                    `json:"rewardPool"`
	TotalWinners       int                        `json:"totalWinners"`
	EndDate            *models.Timestamp          `json:"endDate,omitempty"`
	EligibilityFilters *models.EligibilityFilters `json:"eligibilityFilters,omitempty"`
	KolList            []models.KolEntry          `json:"kolList,omitempty"`
	KolRewardPerUser   *float64                   `json:"kolRewardPerUser,omitempty"`
}

type SocialCampaignServiceInterface interface {
	Publish(draft *SocialCampaignDraft) (*models.SocialCampaign, error)
	List(guildID string) ([]*models.SocialCampaign, error)
	ListAll() (map[string][]*models.SocialCampaign, error)
	Get(guildID, id string) (*models.SocialCampaign, error)
	RecordProgress(guildID, id string, delta models.CounterDelta) (*models.SocialCampaign, error)
}

type SocialCampaignService struct {
	repo   repositories.SocialCampaignRepositoryInterface
	logger providers.Logger
	now    func() time.Time
}

func NewSocialCampaignService(repo repositories.SocialCampaignRepositoryInterface, logger providers.Logger) SocialCampaignServiceInterface {
	return &SocialCampaignService{repo: repo, logger: logger, now: time.Now}
}

func (s *SocialCampaignService) Publish(draft *SocialCampaignDraft) (*models.SocialCampaign, error) {
	if draft == nil {
		return nil, invalid("empty draft")
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	if draft.RewardPool < 0 {
		return nil, invalid("rewardPool must not be negative")
	}
	if draft.TotalWinners < 0 {
		return nil, invalid("totalWinners must not be negative")
	}

	method := models.DistributionMethod(draft.DistributionMethod)
	winners := draft.TotalWinners
	if method == models.DistributionKOL && winners == 0 {
		winners = len(draft.KolList)
	}

	createdAt := models.NewTimestamp(s.now())
	if draft.EndDate != nil && !draft.EndDate.After(createdAt.Time) {
		return nil, invalid("endDate must be in the future")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	campaign := &models.SocialCampaign{
		ID:                 id.String(),
		GuildID:            draft.GuildID,
		Name:               draft.Name,
		Tasks:              draft.Tasks,
		DistributionMethod: method,
		Blockchain:         draft.Blockchain,
		Token:              draft.Token,
		RewardPool:         draft.RewardPool,
		TotalWinners:       winners,
		Status:             models.StatusActive,
		CreatedAt:          createdAt,
		EndDate:            draft.EndDate,
		EligibilityFilters: draft.EligibilityFilters,
		KolList:            draft.KolList,
		KolRewardPerUser:   draft.KolRewardPerUser,
	}
	if campaign.Tasks == nil {
		campaign.Tasks = []models.SocialTask{}
	}

	if err := s.repo.Add(campaign); err != nil {
		return nil, err
	}
	s.logger.Infof(providers.TypePost, "Published social campaign %s for guild %s (pool %.2f, %d winners)",
		campaign.ID, campaign.GuildID, campaign.RewardPool, campaign.TotalWinners)
	return campaign, nil
}

func (s *SocialCampaignService) List(guildID string) ([]*models.SocialCampaign, error) {
	return s.repo.GetAllFor(guildID)
}

func (s *SocialCampaignService) ListAll() (map[string][]*models.SocialCampaign, error) {
	return s.repo.GetAllAcrossGuilds()
}

func (s *SocialCampaignService) Get(guildID, id string) (*models.SocialCampaign, error) {
	return s.repo.Get(guildID, id)
}

// RecordProgress applies delta to the campaign counters. An empty delta
// returns the campaign unchanged without writing.
func (s *SocialCampaignService) RecordProgress(guildID, id string, delta models.CounterDelta) (*models.SocialCampaign, error) {
	if delta.IsZero() {
		return s.repo.Get(guildID, id)
	}
	return s.repo.IncrementCounters(guildID, id, delta)
}
