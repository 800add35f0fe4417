package storage

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildstore/internal/models"
	"guildstore/internal/storage/interfaces"
	"guildstore/internal/testutil"
)

const testKey = "guild-rewards-demo-data"

func newTestManager() (*SchemaManager, *MemoryKeyValue, *testutil.MockMetrics) {
	kv := NewMemoryKeyValue()
	metrics := testutil.NewMockMetrics()
	return NewSchemaManager(kv, testKey, &testutil.MockLogger{}, metrics), kv, metrics
}

func sampleCampaign(guildID, id string) *models.SocialCampaign {
	end := models.NewTimestamp(time.Date(2024, 7, 1, 12, 0, 0, 500000000, time.UTC))
	return &models.SocialCampaign{
		ID:                 id,
		GuildID:            guildID,
		Name:               "Campaign " + id,
		DistributionMethod: models.DistributionRaffle,
		RewardPool:         1000,
		TotalWinners:       50,
		Status:             models.StatusActive,
		CreatedAt:          models.NewTimestamp(time.Date(2024, 6, 1, 9, 15, 30, 123000000, time.UTC)),
		EndDate:            &end,
	}
}

func TestSchemaManager_LoadAbsentReturnsDefault(t *testing.T) {
	m, _, metrics := newTestManager()

	doc, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, models.NewStorageDocument(), doc)
	assert.Empty(t, metrics.Fallbacks)
}

func TestSchemaManager_LoadMalformedJSONFallsBack(t *testing.T) {
	m, kv, metrics := newTestManager()
	require.NoError(t, kv.Set(testKey, []byte("{not json")))

	doc, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, models.NewStorageDocument(), doc)
	assert.Equal(t, 1, metrics.Fallbacks["malformed"])
}

func TestSchemaManager_LoadUnexpectedShapeFallsBack(t *testing.T) {
	m, kv, _ := newTestManager()
	require.NoError(t, kv.Set(testKey, []byte(`{"version":2,"socialCampaigns":5}`)))

	doc, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, models.NewStorageDocument(), doc)
}

func TestSchemaManager_LoadVersionMismatchFallsBack(t *testing.T) {
	m, kv, metrics := newTestManager()
	stale := `{"version":1,"socialCampaigns":{"guild-1":[{"id":"old","guildId":"guild-1"}]},"installedApps":{},"campaigns":{}}`
	require.NoError(t, kv.Set(testKey, []byte(stale)))

	doc, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, models.NewStorageDocument(), doc)
	assert.Equal(t, 1, metrics.Fallbacks["version"])
}

func TestSchemaManager_LoadNullDocumentFallsBack(t *testing.T) {
	m, kv, _ := newTestManager()
	require.NoError(t, kv.Set(testKey, []byte(`null`)))

	doc, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, models.NewStorageDocument(), doc)
}

func TestSchemaManager_LoadNormalizesMissingCollections(t *testing.T) {
	m, kv, _ := newTestManager()
	require.NoError(t, kv.Set(testKey, []byte(`{"version":2}`)))

	doc, err := m.Load()
	require.NoError(t, err)
	assert.NotNil(t, doc.SocialCampaigns)
	assert.NotNil(t, doc.InstalledApps)
	assert.NotNil(t, doc.Campaigns)
}

func TestSchemaManager_LoadDropsNullEntries(t *testing.T) {
	m, kv, _ := newTestManager()
	require.NoError(t, kv.Set(testKey, []byte(`{"version":2,"campaigns":{"g":[null]}}`)))

	doc, err := m.Load()
	require.NoError(t, err)
	assert.NotNil(t, doc.Campaigns["g"])
	assert.Empty(t, doc.Campaigns["g"])
}

func TestSchemaManager_LoadMalformedValueFromBackendFallsBack(t *testing.T) {
	kv := testutil.NewFailingKeyValue()
	kv.GetErr = fmt.Errorf("%w: bad frame", interfaces.ErrMalformedValue)
	m := NewSchemaManager(kv, testKey, &testutil.MockLogger{}, testutil.NewMockMetrics())

	doc, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, models.NewStorageDocument(), doc)
}

func TestSchemaManager_LoadPropagatesBackendError(t *testing.T) {
	kv := testutil.NewFailingKeyValue()
	kv.GetErr = testutil.ErrStorageDown
	m := NewSchemaManager(kv, testKey, &testutil.MockLogger{}, testutil.NewMockMetrics())

	doc, err := m.Load()
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, testutil.ErrStorageDown)
}

func TestSchemaManager_SaveLoadRoundtrip(t *testing.T) {
	m, _, _ := newTestManager()
	doc := models.NewStorageDocument()
	original := sampleCampaign("guild-1", "c1")
	doc.SocialCampaigns["guild-1"] = []*models.SocialCampaign{original}

	require.NoError(t, m.Save(doc))

	loaded, err := m.Load()
	require.NoError(t, err)
	require.Len(t, loaded.SocialCampaigns["guild-1"], 1)
	got := loaded.SocialCampaigns["guild-1"][0]
	assert.Equal(t, original.CreatedAt.String(), got.CreatedAt.String())
	require.NotNil(t, got.EndDate)
	assert.Equal(t, original.EndDate.String(), got.EndDate.String())
	assert.Equal(t, *original, *got)
}

func TestSchemaManager_SaveStampsCurrentVersion(t *testing.T) {
	m, kv, _ := newTestManager()
	doc := models.NewStorageDocument()
	doc.Version = 99

	require.NoError(t, m.Save(doc))

	raw, ok, err := kv.Get(testKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(raw), `"version":2`)
}

func TestSchemaManager_SaveNilDocument(t *testing.T) {
	m, _, _ := newTestManager()
	assert.Error(t, m.Save(nil))
	assert.Equal(t, uint64(0), m.GetSnapshot())
}

func TestSchemaManager_SnapshotIncrementsByOne(t *testing.T) {
	m, _, _ := newTestManager()
	assert.Equal(t, uint64(0), m.GetSnapshot())

	require.NoError(t, m.Save(models.NewStorageDocument()))
	assert.Equal(t, uint64(1), m.GetSnapshot())

	require.NoError(t, m.Save(models.NewStorageDocument()))
	assert.Equal(t, uint64(2), m.GetSnapshot())

	require.NoError(t, m.Reset())
	assert.Equal(t, uint64(3), m.GetSnapshot())
}

func TestSchemaManager_FailedSaveDoesNotNotify(t *testing.T) {
	kv := testutil.NewFailingKeyValue()
	kv.SetErr = testutil.ErrStorageDown
	m := NewSchemaManager(kv, testKey, &testutil.MockLogger{}, testutil.NewMockMetrics())

	calls := 0
	m.Subscribe(func() { calls++ })

	err := m.Save(models.NewStorageDocument())
	assert.ErrorIs(t, err, testutil.ErrStorageDown)
	assert.Equal(t, 0, calls)
	assert.Equal(t, uint64(0), m.GetSnapshot())
}

func TestSchemaManager_FailedResetDoesNotNotify(t *testing.T) {
	kv := testutil.NewFailingKeyValue()
	kv.DeleteErr = testutil.ErrStorageDown
	m := NewSchemaManager(kv, testKey, &testutil.MockLogger{}, testutil.NewMockMetrics())

	calls := 0
	m.Subscribe(func() { calls++ })

	assert.ErrorIs(t, m.Reset(), testutil.ErrStorageDown)
	assert.Equal(t, 0, calls)
	assert.Equal(t, uint64(0), m.GetSnapshot())
}

func TestSchemaManager_ResetDeletesKey(t *testing.T) {
	m, kv, _ := newTestManager()
	require.NoError(t, m.Save(models.NewStorageDocument()))
	require.Equal(t, 1, kv.Len())

	require.NoError(t, m.Reset())
	assert.Equal(t, 0, kv.Len())
}

func TestSchemaManager_ResetClearsAllGuilds(t *testing.T) {
	m, _, _ := newTestManager()
	doc := models.NewStorageDocument()
	for _, g := range []string{"guild-1", "guild-2", "guild-3"} {
		doc.SocialCampaigns[g] = []*models.SocialCampaign{sampleCampaign(g, "c-"+g)}
		doc.InstalledApps[g] = []*models.AppInstallation{{GuildID: g, AppID: "quests"}}
		doc.Campaigns[g] = []*models.Campaign{{ID: "g-" + g, GuildID: g}}
	}
	require.NoError(t, m.Save(doc))

	require.NoError(t, m.Reset())

	loaded, err := m.Load()
	require.NoError(t, err)
	for _, g := range []string{"guild-1", "guild-2", "guild-3"} {
		assert.Empty(t, loaded.SocialCampaigns[g])
		assert.Empty(t, loaded.InstalledApps[g])
		assert.Empty(t, loaded.Campaigns[g])
	}
	assert.True(t, loaded.IsEmpty())
}

func TestSchemaManager_ListenersCalledInOrder(t *testing.T) {
	m, _, _ := newTestManager()
	var order []int
	m.Subscribe(func() { order = append(order, 1) })
	m.Subscribe(func() { order = append(order, 2) })
	m.Subscribe(func() { order = append(order, 3) })

	require.NoError(t, m.Save(models.NewStorageDocument()))
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestSchemaManager_UnsubscribeStopsCalls(t *testing.T) {
	m, _, _ := newTestManager()
	calls := 0
	unsubscribe := m.Subscribe(func() { calls++ })

	require.NoError(t, m.Save(models.NewStorageDocument()))
	assert.Equal(t, 1, calls)

	unsubscribe()
	unsubscribe()
	require.NoError(t, m.Save(models.NewStorageDocument()))
	require.NoError(t, m.Reset())
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, m.ListenerCount())
}

func TestSchemaManager_UnsubscribeDuringNotification(t *testing.T) {
	m, _, _ := newTestManager()
	secondCalls := 0
	var unsubscribeSecond func()
	m.Subscribe(func() { unsubscribeSecond() })
	unsubscribeSecond = m.Subscribe(func() { secondCalls++ })

	require.NoError(t, m.Save(models.NewStorageDocument()))
	assert.Equal(t, 0, secondCalls)
	assert.Equal(t, 1, m.ListenerCount())
}

func TestSchemaManager_ListenerSeesSavedDocument(t *testing.T) {
	m, _, _ := newTestManager()
	var seen *models.StorageDocument
	m.Subscribe(func() {
		doc, err := m.Load()
		require.NoError(t, err)
		seen = doc
	})

	doc := models.NewStorageDocument()
	doc.Campaigns["guild-1"] = []*models.Campaign{{ID: "g1", GuildID: "guild-1"}}
	require.NoError(t, m.Save(doc))

	require.NotNil(t, seen)
	assert.Len(t, seen.Campaigns["guild-1"], 1)
}

func TestSchemaManager_SubscribeEventsReportsReason(t *testing.T) {
	m, _, _ := newTestManager()
	fixed := time.Date(2024, 2, 2, 2, 2, 2, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	var events []models.ChangeEvent
	m.SubscribeEvents(func(e models.ChangeEvent) { events = append(events, e) })

	require.NoError(t, m.Save(models.NewStorageDocument()))
	require.NoError(t, m.Reset())
	m.NotifyExternalChange()

	require.Len(t, events, 3)
	assert.Equal(t, models.ChangeEvent{Snapshot: 1, Reason: models.ReasonSave, At: models.NewTimestamp(fixed)}, events[0])
	assert.Equal(t, models.ReasonReset, events[1].Reason)
	assert.Equal(t, uint64(2), events[1].Snapshot)
	assert.Equal(t, models.ReasonExternal, events[2].Reason)
	assert.Equal(t, uint64(3), m.GetSnapshot())
}

func TestSchemaManager_UpdateAppliesMutation(t *testing.T) {
	m, _, _ := newTestManager()
	calls := 0
	m.Subscribe(func() { calls++ })

	err := m.Update(func(doc *models.StorageDocument) error {
		doc.Campaigns["guild-1"] = append(doc.Campaigns["guild-1"], &models.Campaign{ID: "g1", GuildID: "guild-1"})
		return nil
	})
	require.NoError(t, err)

	doc, err := m.Load()
	require.NoError(t, err)
	assert.Len(t, doc.Campaigns["guild-1"], 1)
	assert.Equal(t, 1, calls)
	assert.Equal(t, uint64(1), m.GetSnapshot())
}

func TestSchemaManager_UpdateErrorSkipsSave(t *testing.T) {
	m, kv, _ := newTestManager()
	boom := errors.New("boom")

	err := m.Update(func(doc *models.StorageDocument) error {
		doc.Campaigns["guild-1"] = []*models.Campaign{{ID: "g1"}}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, kv.Len())
	assert.Equal(t, uint64(0), m.GetSnapshot())
}

func TestSchemaManager_ConcurrentUpdatesAreNotLost(t *testing.T) {
	m, _, _ := newTestManager()
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := m.Update(func(doc *models.StorageDocument) error {
				doc.SocialCampaigns["guild-1"] = append(doc.SocialCampaigns["guild-1"], sampleCampaign("guild-1", fmt.Sprintf("c%d", i)))
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	doc, err := m.Load()
	require.NoError(t, err)
	assert.Len(t, doc.SocialCampaigns["guild-1"], n)
	assert.Equal(t, uint64(n), m.GetSnapshot())
}

func TestSchemaManager_ConcurrentSubscribeAndSave(t *testing.T) {
	m, _, _ := newTestManager()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unsubscribe := m.Subscribe(func() {})
			unsubscribe()
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Save(models.NewStorageDocument()))
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(20), m.GetSnapshot())
	assert.Equal(t, 0, m.ListenerCount())
}
