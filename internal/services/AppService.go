package services

import (
	"time"

	"guildstore/internal/models"
	"guildstore/internal/providers"
	"guildstore/internal/repositories"
)

type InstallRequest struct {
	GuildID     string `json:"guildId" validate:"required"`
	AppID       string `json:"appId" validate:"required"`
	InstalledBy string `json:"installedBy"`
}

type AppServiceInterface interface {
	Install(req *InstallRequest) error
	Uninstall(guildID, appID string) error
	IsInstalled(guildID, appID string) (bool, error)
	List(guildID string) ([]*models.AppInstallation, error)
	ListAll() (map[string][]*models.AppInstallation, error)
}

type AppService struct {
	repo   repositories.AppInstallationRepositoryInterface
	logger providers.Logger
	now    func() time.Time
}

func NewAppService(repo repositories.AppInstallationRepositoryInterface, logger providers.Logger) AppServiceInterface {
	return &AppService{repo: repo, logger: logger, now: time.Now}
}

// Install is idempotent per guild and app.
func (s *AppService) Install(req *InstallRequest) error {
	if req == nil {
		return invalid("empty request")
	}
	if err := validateDraft(req); err != nil {
		return err
	}
	err := s.repo.Add(&models.AppInstallation{
		AppID:       req.AppID,
		GuildID:     req.GuildID,
		InstalledAt: models.NewTimestamp(s.now()),
		InstalledBy: req.InstalledBy,
	})
	if err != nil {
		return err
	}
	s.logger.Infof(providers.TypePost, "App %s installed for guild %s by %s", req.AppID, req.GuildID, req.InstalledBy)
	return nil
}

func (s *AppService) Uninstall(guildID, appID string) error {
	if guildID == "" || appID == "" {
		return invalid("guildId and appId are required")
	}
	if err := s.repo.Remove(guildID, appID); err != nil {
		return err
	}
	s.logger.Infof(providers.TypePost, "App %s uninstalled for guild %s", appID, guildID)
	return nil
}

func (s *AppService) IsInstalled(guildID, appID string) (bool, error) {
	return s.repo.IsInstalled(guildID, appID)
}

func (s *AppService) List(guildID string) ([]*models.AppInstallation, error) {
	return s.repo.GetAllFor(guildID)
}

func (s *AppService) ListAll() (map[string][]*models.AppInstallation, error) {
	return s.repo.GetAllAcrossGuilds()
}
