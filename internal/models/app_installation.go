package models

// AppInstallation marks an app as active for a guild. GuildID and AppID
// together identify it.
type AppInstallation struct {
	AppID       string    `json:"appId"`
	GuildID     string    `json:"guildId"`
	InstalledAt Timestamp `json:"installedAt"`
	InstalledBy string    `json:"installedBy"`
}

func (a *AppInstallation) Matches(guildID, appID string) bool {
	return a.GuildID == guildID && a.AppID == appID
}
