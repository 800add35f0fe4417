package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildstore/internal/models"
	"guildstore/internal/repositories"
	"guildstore/internal/services"
	"guildstore/internal/storage"
	"guildstore/internal/storage/interfaces"
	"guildstore/internal/testutil"
)

const testKey = "guild-rewards-demo-data"

type fixture struct {
	manager *storage.SchemaManager
	cache   *testutil.MockCache
	logger  *testutil.MockLogger
	api     *ApiController
}

func newFixture(kv interfaces.KeyValueInterface) *fixture {
	logger := &testutil.MockLogger{}
	m := storage.NewSchemaManager(kv, testKey, logger, testutil.NewMockMetrics())
	cache := testutil.NewMockCache()
	api := NewApiController(
		logger,
		services.NewSocialCampaignService(repositories.NewSocialCampaignRepository(m), logger),
		services.NewAppService(repositories.NewAppInstallationRepository(m), logger),
		services.NewCampaignService(repositories.NewCampaignRepository(m), logger),
		services.NewStoreService(m, logger),
		cache,
	)
	return &fixture{manager: m, cache: cache, logger: logger, api: api}
}

func do(handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

const publishBody = `{"guildId":"guild-1","name":"Test","distributionMethod":"fcfs","rewardPool":100,"totalWinners":10}`

func TestPublishSocialCampaign_Created(t *testing.T) {
	f := newFixture(storage.NewMemoryKeyValue())

	rr := do(f.api.PublishSocialCampaign, http.MethodPost, "/social-campaigns", publishBody)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "guild-1", resp["guildId"])
	assert.Equal(t, float64(10), resp["perWinnerReward"])
	assert.Equal(t, float64(10), resp["serviceFee"])
	assert.Equal(t, float64(110), resp["totalPayable"])
	assert.Equal(t, "active", resp["status"])
	assert.NotEmpty(t, resp["id"])
}

func TestPublishSocialCampaign_InvalidJSON(t *testing.T) {
	f := newFixture(storage.NewMemoryKeyValue())
	rr := do(f.api.PublishSocialCampaign, http.MethodPost, "/social-campaigns", "{broken")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPublishSocialCampaign_ValidationError(t *testing.T) {
	f := newFixture(storage.NewMemoryKeyValue())
	rr := do(f.api.PublishSocialCampaign, http.MethodPost, "/social-campaigns", `{"guildId":"guild-1","distributionMethod":"fcfs"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, f.manager.GetSnapshot())
}

func TestPublishSocialCampaign_OversizedBody(t *testing.T) {
	f := newFixture(storage.NewMemoryKeyValue())
	huge := `{"guildId":"` + strings.Repeat("a", maxRequestBodySize+1) + `"}`
	rr := do(f.api.PublishSocialCampaign, http.MethodPost, "/social-campaigns", huge)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListSocialCampaigns_ByGuildAndAll(t *testing.T) {
	f := newFixture(storage.NewMemoryKeyValue())
	require.Equal(t, http.StatusCreated, do(f.api.PublishSocialCampaign, http.MethodPost, "/", publishBody).Code)

	rr := do(f.api.ListSocialCampaigns, http.MethodGet, "/social-campaigns?guild=guild-1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rr = do(f.api.ListSocialCampaigns, http.MethodGet, "/social-campaigns?guild=guild-2", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = do(f.api.ListSocialCampaigns, http.MethodGet, "/social-campaigns", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var all map[string][]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &all))
	assert.Len(t, all["guild-1"], 1)
}

func TestListSocialCampaigns_CacheKeyedBySnapshot(t *testing.T) {
	f := newFixture(storage.NewMemoryKeyValue())

	rr := do(f.api.ListSocialCampaigns, http.MethodGet, "/social-campaigns?guild=guild-1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	_, cached := f.cache.Get("social:0:guild-1")
	assert.True(t, cached)

	require.Equal(t, http.StatusCreated, do(f.api.PublishSocialCampaign, http.MethodPost, "/", publishBody).Code)

	rr = do(f.api.ListSocialCampaigns, http.MethodGet, "/social-campaigns?guild=guild-1", "")
	var list []interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list, 1, "a write must not be hidden by the cache")
	_, cached = f.cache.Get("social:1:guild-1")
	assert.True(t, cached)
}

func TestListSocialCampaigns_ServedFromCache(t *testing.T) {
	f := newFixture(storage.NewMemoryKeyValue())
	f.cache.Set("social:0:guild-1", []byte(`["cached"]`))

	rr := do(f.api.ListSocialCampaigns, http.MethodGet, "/social-campaigns?guild=guild-1", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `["cached"]`, rr.Body.String())
}

func TestListSocialCampaigns_StorageFailure(t *testing.T) {
	kv := testutil.NewFailingKeyValue()
	kv.GetErr = testutil.ErrStorageDown
	f := newFixture(kv)

	rr := do(f.api.ListSocialCampaigns, http.MethodGet, "/social-campaigns?guild=guild-1", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, 1, f.logger.Count("error"))
	assert.Empty(t, f.cache.Data)
}

func TestRecordProgress(t *testing.T) {
	f := newFixture(storage.NewMemoryKeyValue())
	rr := do(f.api.PublishSocialCampaign, http.MethodPost, "/", publishBody)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created models.SocialCampaign
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = do(f.api.RecordProgress, http.MethodPost, "/social-campaigns/progress",
		`{"guildId":"guild-1","id":"`+created.ID+`","participants":2,"completed":1}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var updated models.SocialCampaign
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, 2, updated.ParticipantsCount)
	assert.Equal(t, 1, updated.CompletedCount)
}

func TestRecordProgress_UnknownCampaign(t *testing.T) {
	f := newFixture(storage.NewMemoryKeyValue())
	rr := do(f.api.RecordProgress, http.MethodPost, "/social-campaigns/progress", `{"guildId":"guild-1","id":"nope","participants":1}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestInstallAndUninstallApp(t *testing.T) {
	f := newFixture(storage.NewMemoryKeyValue())
	body := `{"guildId":"guild-1","appId":"quests","installedBy":"user-1"}`

	assert.Equal(t, http.StatusNoContent, do(f.api.InstallApp, http.MethodPost, "/apps/install", body).Code)
	assert.Equal(t, http.StatusNoContent, do(f.api.InstallApp, http.MethodPost, "/apps/install", body).Code)

	rr := do(f.api.ListApps, http.MethodGet, "/apps?guild=guild-1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var apps []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apps))
	require.Len(t, apps, 1)
	assert.Equal(t, "quests", apps[0]["appId"])

	assert.Equal(t, http.StatusNoContent, do(f.api.UninstallApp, http.MethodPost, "/apps/uninstall", `{"guildId":"guild-1","appId":"quests"}`).Code)
	assert.Equal(t, http.StatusNoContent, do(f.api.UninstallApp, http.MethodPost, "/apps/uninstall", `{"guildId":"guild-1","appId":"quests"}`).Code)

	rr = do(f.api.ListApps, http.MethodGet, "/apps?guild=guild-1", "")
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestInstallApp_MissingFields(t *testing.T) {
	f := newFixture(storage.NewMemoryKeyValue())
	assert.Equal(t, http.StatusBadRequest, do(f.api.InstallApp, http.MethodPost, "/apps/install", `{"guildId":"guild-1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(f.api.UninstallApp, http.MethodPost, "/apps/uninstall", `{}`).Code)
}

func TestCreateAndListCampaigns(t *testing.T) {
	f := newFixture(storage.NewMemoryKeyValue())

	rr := do(f.api.CreateCampaign, http.MethodPost, "/campaigns", `{"guildId":"guild-1","name":"Spring","budget":50}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created models.Campaign
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, models.StatusDraft, created.Status)

	rr = do(f.api.ListCampaigns, http.MethodGet, "/campaigns", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var all map[string][]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &all))
	assert.Len(t, all["guild-1"], 1)

	assert.Equal(t, http.StatusBadRequest, do(f.api.CreateCampaign, http.MethodPost, "/campaigns", `{"guildId":"guild-1"}`).Code)
}

func TestSnapshotExportReset(t *testing.T) {
	f := newFixture(storage.NewMemoryKeyValue())
	require.Equal(t, http.StatusCreated, do(f.api.PublishSocialCampaign, http.MethodPost, "/", publishBody).Code)

	rr := do(f.api.Snapshot, http.MethodGet, "/snapshot", "")
	assert.JSONEq(t, `{"snapshot":1}`, rr.Body.String())

	rr = do(f.api.Export, http.MethodGet, "/export", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var doc models.StorageDocument
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	assert.Equal(t, models.CurrentVersion, doc.Version)
	assert.Len(t, doc.SocialCampaigns["guild-1"], 1)

	assert.Equal(t, http.StatusNoContent, do(f.api.Reset, http.MethodPost, "/reset", "").Code)

	rr = do(f.api.Snapshot, http.MethodGet, "/snapshot", "")
	assert.JSONEq(t, `{"snapshot":2}`, rr.Body.String())

	rr = do(f.api.Export, http.MethodGet, "/export", "")
	assert.JSONEq(t, `{"version":2,"socialCampaigns":{},"installedApps":{},"campaigns":{}}`, rr.Body.String())
}

func TestReset_StorageFailure(t *testing.T) {
	kv := testutil.NewFailingKeyValue()
	kv.DeleteErr = testutil.ErrStorageDown
	f := newFixture(kv)

	rr := do(f.api.Reset, http.MethodPost, "/reset", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Zero(t, f.manager.GetSnapshot())
}
