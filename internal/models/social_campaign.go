package models

type DistributionMethod string

const (
	DistributionFCFS   DistributionMethod = "fcfs"
	DistributionRaffle DistributionMethod = "raffle"
	DistributionKOL    DistributionMethod = "kol"
)

func (m DistributionMethod) Valid() bool {
	switch m {
	case DistributionFCFS, DistributionRaffle, DistributionKOL:
		return true
	}
	return false
}

type CampaignStatus string

const (
	StatusDraft     CampaignStatus = "draft"
	StatusActive    CampaignStatus = "active"
	StatusPaused    CampaignStatus = "paused"
	StatusCompleted CampaignStatus = "completed"
)

// ServiceFeeRate is the platform fee charged on top of a reward pool.
const ServiceFeeRate = 0.10

type SocialTask struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	Required bool   `json:"required"`
}

type EligibilityFilters struct {
	MinFollowers         int        `json:"minFollowers,omitempty"`
	RequiredRoles        []string   `json:"requiredRoles,omitempty"`
	WalletConnected      bool       `json:"walletConnected,omitempty"`
	AccountCreatedBefore *Timestamp `json:"accountCreatedBefore,omitempty"`
}

type KolEntry struct {
	Handle string `json:"handle"`
	Wallet string `json:"wallet,omitempty"`
}

type SocialCampaign struct {
	ID                  string              `json:"id"`
	GuildID             string              `json:"guildId"`
	Name                string              `json:"name"`
	Tasks               []SocialTask        `json:"tasks"`
	DistributionMethod  DistributionMethod  `json:"distributionMethod"`
	Blockchain          string              `json:"blockchain"`
	Token               string              `json:"token"`
	RewardPool          float64             `json:"rewardPool"`
	TotalWinners        int                 `json:"totalWinners"`
	PerWinnerReward     float64             `json:"perWinnerReward"`
	ServiceFee          float64             `json:"serviceFee"`
	TotalPayable        float64             `json:"totalPayable"`
	Status              CampaignStatus      `json:"status"`
	CreatedAt           Timestamp           `json:"createdAt"`
	EndDate             *Timestamp          `json:"endDate,omitempty"`
	ParticipantsCount   int                 `json:"participantsCount"`
	CompletedCount      int                 `json:"completedCount"`
	RewardsClaimedCount int                 `json:"rewardsClaimedCount"`
	EligibilityFilters  *EligibilityFilters `json:"eligibilityFilters,omitempty"`
	KolList             []KolEntry          `json:"kolList,omitempty"`
	KolRewardPerUser    *float64            `json:"kolRewardPerUser,omitempty"`
}

// Totals holds the amounts derived from a reward pool at creation time.
type Totals struct {
	PerWinnerReward float64 `json:"perWinnerReward"`
	ServiceFee      float64 `json:"serviceFee"`
	TotalPayable    float64 `json:"totalPayable"`
}

// CalculateTotals splits the pool across winners and adds the service fee.
// Zero (or negative) winners yield a zero per-winner reward.
func CalculateTotals(rewardPool float64, totalWinners int) Totals {
	var perWinner float64
	if totalWinners > 0 {
		perWinner = rewardPool / float64(totalWinners)
	}
	fee := rewardPool * ServiceFeeRate
	return Totals{
		PerWinnerReward: perWinner,
		ServiceFee:      fee,
		TotalPayable:    rewardPool + fee,
	}
}

func (c *SocialCampaign) ApplyTotals(t Totals) {
	c.PerWinnerReward = t.PerWinnerReward
	c.ServiceFee = t.ServiceFee
	c.TotalPayable = t.TotalPayable
}

// CounterDelta is added to a campaign's progress counters.
type CounterDelta struct {
	Participants   int `json:"participants"`
	Completed      int `json:"completed"`
	RewardsClaimed int `json:"rewardsClaimed"`
}

func (d CounterDelta) IsZero() bool {
	return d.Participants == 0 && d.Completed == 0 && d.RewardsClaimed == 0
}
