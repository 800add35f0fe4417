package models

import "slices"

// CurrentVersion is the schema version of StorageDocument. A stored document
// carrying any other version is discarded on load.
const CurrentVersion = 2

// StorageDocument is the single root object kept under the storage key.
// Every collection is keyed by guild identifier.
type StorageDocument struct {
	Version         int                           `json:"version"`
	SocialCampaigns map[string][]*SocialCampaign  `json:"socialCampaigns"`
	InstalledApps   map[string][]*AppInstallation `json:"installedApps"`
	Campaigns       map[string][]*Campaign        `json:"campaigns"`
}

func NewStorageDocument() *StorageDocument {
	return &StorageDocument{
		Version:         CurrentVersion,
		SocialCampaigns: make(map[string][]*SocialCampaign),
		InstalledApps:   make(map[string][]*AppInstallation),
		Campaigns:       make(map[string][]*Campaign),
	}
}

// Normalize replaces nil collections with empty ones and drops null entries
// inside each guild's list.
func (d *StorageDocument) Normalize() {
	if d.SocialCampaigns == nil {
		d.SocialCampaigns = make(map[string][]*SocialCampaign)
	}
	if d.InstalledApps == nil {
		d.InstalledApps = make(map[string][]*AppInstallation)
	}
	if d.Campaigns == nil {
		d.Campaigns = make(map[string][]*Campaign)
	}
	dropNilEntries(d.SocialCampaigns)
	dropNilEntries(d.InstalledApps)
	dropNilEntries(d.Campaigns)
}

func dropNilEntries[T any](byGuild map[string][]*T) {
	for guild, items := range byGuild {
		byGuild[guild] = slices.DeleteFunc(items, func(item *T) bool { return item == nil })
		if byGuild[guild] == nil {
			byGuild[guild] = []*T{}
		}
	}
}

func (d *StorageDocument) IsEmpty() bool {
	return len(d.SocialCampaigns) == 0 && len(d.InstalledApps) == 0 && len(d.Campaigns) == 0
}
