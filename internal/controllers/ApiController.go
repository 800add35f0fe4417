package controllers

import (
	"errors"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"

	"guildstore/internal/models"
	"guildstore/internal/providers"
	"guildstore/internal/repositories"
	"guildstore/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger    providers.Logger
	social    services.SocialCampaignServiceInterface
	apps      services.AppServiceInterface
	campaigns services.CampaignServiceInterface
	store     services.StoreServiceInterface
	cache     providers.CacheProviderInterface
}

func NewApiController(
	logger providers.Logger,
	social services.SocialCampaignServiceInterface,
	apps services.AppServiceInterface,
	campaigns services.CampaignServiceInterface,
	store services.StoreServiceInterface,
	cache providers.CacheProviderInterface,
) *ApiController {
	return &ApiController{
		logger:    logger,
		social:    social,
		apps:      apps,
		campaigns: campaigns,
		store:     store,
		cache:     cache,
	}
}

type progressRequest struct {
	GuildID string `json:"guildId"`
	ID      string `json:"id"`
	models.CounterDelta
}

type uninstallRequest struct {
	GuildID string `json:"guildId"`
	AppID   string `json:"appId"`
}

type snapshotResponse struct {
	Snapshot uint64 `json:"snapshot"`
}

// serveFromCacheOrCompute caches responses under the current snapshot. The
// snapshot is read before compute so a response is never cached under a
// newer snapshot than the data it holds.
func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, kind, guild string, compute func() (any, error)) {
	cacheKey := kind + ":" + strconv.FormatUint(ac.store.Snapshot(), 10) + ":" + guild
	if data, ok := ac.cache.Get(cacheKey); ok {
		writeJSONBytes(w, http.StatusOK, data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.writeError(w, r, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}

	ac.cache.Set(cacheKey, gson)
	writeJSONBytes(w, http.StatusOK, gson)
}

func (ac *ApiController) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return false
	}
	return true
}

func (ac *ApiController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidDraft):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repositories.ErrNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	default:
		ac.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %s", r.Method, r.URL.Path, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (ac *ApiController) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	writeJSONBytes(w, status, gson)
}

func writeJSONBytes(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// ListSocialCampaigns returns one guild's campaigns, or every guild's when
// the guild parameter is omitted.
func (ac *ApiController) ListSocialCampaigns(w http.ResponseWriter, r *http.Request) {
	guild := r.URL.Query().Get("guild")
	ac.serveFromCacheOrCompute(w, r, "social", guild, func() (any, error) {
		if guild == "" {
			return ac.social.ListAll()
		}
		return ac.social.List(guild)
	})
}

func (ac *ApiController) PublishSocialCampaign(w http.ResponseWriter, r *http.Request) {
	var draft services.SocialCampaignDraft
	if !ac.decode(w, r, &draft) {
		return
	}
	campaign, err := ac.social.Publish(&draft)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, r, http.StatusCreated, campaign)
}

func (ac *ApiController) RecordProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if !ac.decode(w, r, &req) {
		return
	}
	campaign, err := ac.social.RecordProgress(req.GuildID, req.ID, req.CounterDelta)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, r, http.StatusOK, campaign)
}

func (ac *ApiController) ListApps(w http.ResponseWriter, r *http.Request) {
	guild := r.URL.Query().Get("guild")
	ac.serveFromCacheOrCompute(w, r, "apps", guild, func() (any, error) {
		if guild == "" {
			return ac.apps.ListAll()
		}
		return ac.apps.List(guild)
	})
}

func (ac *ApiController) InstallApp(w http.ResponseWriter, r *http.Request) {
	var req services.InstallRequest
	if !ac.decode(w, r, &req) {
		return
	}
	if err := ac.apps.Install(&req); err != nil {
		ac.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) UninstallApp(w http.ResponseWriter, r *http.Request) {
	var req uninstallRequest
	if !ac.decode(w, r, &req) {
		return
	}
	if err := ac.apps.Uninstall(req.GuildID, req.AppID); err != nil {
		ac.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	guild := r.URL.Query().Get("guild")
	ac.serveFromCacheOrCompute(w, r, "campaigns", guild, func() (any, error) {
		if guild == "" {
			return ac.campaigns.ListAll()
		}
		return ac.campaigns.List(guild)
	})
}

func (ac *ApiController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var draft services.CampaignDraft
	if !ac.decode(w, r, &draft) {
		return
	}
	campaign, err := ac.campaigns.Create(&draft)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, r, http.StatusCreated, campaign)
}

func (ac *ApiController) Snapshot(w http.ResponseWriter, r *http.Request) {
	ac.writeJSON(w, r, http.StatusOK, snapshotResponse{Snapshot: ac.store.Snapshot()})
}

func (ac *ApiController) Export(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, r, "export", "", func() (any, error) {
		return ac.store.Export()
	})
}

func (ac *ApiController) Reset(w http.ResponseWriter, r *http.Request) {
	if err := ac.store.Reset(); err != nil {
		ac.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
