package models

type Campaign struct {
	ID                string         `json:"id"`
	GuildID           string         `json:"guildId"`
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	Type              string         `json:"type"`
	Status            CampaignStatus `json:"status"`
	Budget            float64        `json:"budget"`
	ParticipantsCount int            `json:"participantsCount"`
	StartDate         Timestamp      `json:"startDate"`
	EndDate           *Timestamp     `json:"endDate,omitempty"`
	CreatedAt         Timestamp      `json:"createdAt"`
}
