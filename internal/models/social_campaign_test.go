package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTotals(t *testing.T) {
	totals := CalculateTotals(1000, 50)
	assert.Equal(t, Totals{PerWinnerReward: 20, ServiceFee: 100, TotalPayable: 1100}, totals)
}

func TestCalculateTotals_ZeroWinners(t *testing.T) {
	totals := CalculateTotals(1000, 0)
	assert.Equal(t, Totals{PerWinnerReward: 0, ServiceFee: 100, TotalPayable: 1100}, totals)
	assert.False(t, math.IsNaN(totals.PerWinnerReward))
	assert.False(t, math.IsInf(totals.PerWinnerReward, 0))
}

func TestCalculateTotals_NegativeWinners(t *testing.T) {
	totals := CalculateTotals(500, -3)
	assert.Equal(t, 0.0, totals.PerWinnerReward)
}

func TestCalculateTotals_SmallPool(t *testing.T) {
	totals := CalculateTotals(100, 10)
	assert.Equal(t, 10.0, totals.PerWinnerReward)
	assert.InDelta(t, 10.0, totals.ServiceFee, 1e-9)
	assert.InDelta(t, 110.0, totals.TotalPayable, 1e-9)
}

func TestSocialCampaign_ApplyTotals(t *testing.T) {
	c := &SocialCampaign{RewardPool: 1000, TotalWinners: 50}
	c.ApplyTotals(CalculateTotals(c.RewardPool, c.TotalWinners))
	assert.Equal(t, 20.0, c.PerWinnerReward)
	assert.Equal(t, 100.0, c.ServiceFee)
	assert.Equal(t, 1100.0, c.TotalPayable)
}

func TestDistributionMethod_Valid(t *testing.T) {
	assert.True(t, DistributionFCFS.Valid())
	assert.True(t, DistributionRaffle.Valid())
	assert.True(t, DistributionKOL.Valid())
	assert.False(t, DistributionMethod("lottery").Valid())
	assert.False(t, DistributionMethod("").Valid())
}

func TestCounterDelta_IsZero(t *testing.T) {
	assert.True(t, CounterDelta{}.IsZero())
	assert.False(t, CounterDelta{Completed: 1}.IsZero())
}

func TestAppInstallation_Matches(t *testing.T) {
	a := &AppInstallation{GuildID: "guild-1", AppID: "quests"}
	assert.True(t, a.Matches("guild-1", "quests"))
	assert.False(t, a.Matches("guild-2", "quests"))
	assert.False(t, a.Matches("guild-1", "raffles"))
}
