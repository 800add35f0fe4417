package repositories

import (
	"errors"

	"guildstore/internal/models"
	"guildstore/internal/storage/interfaces"
)

type AppInstallationRepositoryInterface interface {
	GetAllFor(guildID string) ([]*models.AppInstallation, error)
	GetAllAcrossGuilds() (map[string][]*models.AppInstallation, error)
	IsInstalled(guildID, appID string) (bool, error)
	Add(installation *models.AppInstallation) error
	Remove(guildID, appID string) error
}

type AppInstallationRepository struct {
	manager interfaces.SchemaManagerInterface
}

func NewAppInstallationRepository(manager interfaces.SchemaManagerInterface) AppInstallationRepositoryInterface {
	return &AppInstallationRepository{manager: manager}
}

func (r *AppInstallationRepository) GetAllFor(guildID string) ([]*models.AppInstallation, error) {
	doc, err := r.manager.Load()
	if err != nil {
		return nil, err
	}
	if list := doc.InstalledApps[guildID]; list != nil {
		return list, nil
	}
	return []*models.AppInstallation{}, nil
}

func (r *AppInstallationRepository) GetAllAcrossGuilds() (map[string][]*models.AppInstallation, error) {
	doc, err := r.manager.Load()
	if err != nil {
		return nil, err
	}
	return doc.InstalledApps, nil
}

func (r *AppInstallationRepository) IsInstalled(guildID, appID string) (bool, error) {
	list, err := r.GetAllFor(guildID)
	if err != nil {
		return false, err
	}
	for _, a := range list {
		if a != nil && a.Matches(guildID, appID) {
			return true, nil
		}
	}
	return false, nil
}

// Add records the installation. Installing an app that is already present
// for the guild changes nothing and does not write.
func (r *AppInstallationRepository) Add(installation *models.AppInstallation) error {
	if installation == nil {
		return errors.New("nil installation")
	}

	err := r.manager.Update(func(doc *models.StorageDocument) error {
		for _, a := range doc.InstalledApps[installation.GuildID] {
			if a != nil && a.Matches(installation.GuildID, installation.AppID) {
				return errUnchanged
			}
		}
		doc.InstalledApps[installation.GuildID] = append(doc.InstalledApps[installation.GuildID], installation)
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return nil
	}
	return err
}

// Remove drops the guild's installation of appID. Removing an app that is
// not installed is a no-op.
func (r *AppInstallationRepository) Remove(guildID, appID string) error {
	err := r.manager.Update(func(doc *models.StorageDocument) error {
		list := doc.InstalledApps[guildID]
		kept := make([]*models.AppInstallation, 0, len(list))
		for _, a := range list {
			if a != nil && a.Matches(guildID, appID) {
				continue
			}
			kept = append(kept, a)
		}
		if len(kept) == len(list) {
			return errUnchanged
		}
		doc.InstalledApps[guildID] = kept
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return nil
	}
	return err
}
