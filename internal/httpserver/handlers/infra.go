package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/plugmarket/plugmarket/internal/httpserver/deps"
)

type componentStatus struct {
	OK            bool   `json:"ok"`
	PluginsLoaded *int   `json:"plugins_loaded,omitempty"`
	LastRefresh   string `json:"last_refresh,omitempty"`
	Mode          string `json:"mode,omitempty"`
	Impact        string `json:"impact,omitempty"`
	Error         string `json:"error,omitempty"`
}

type infraResponse struct {
	ServiceMode string                     `json:"service_mode"`
	Components  map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		pluginCount := d.MemoryIndex.Count()
		lastRefresh := d.MemoryIndex.LastRefresh()
		lastRefreshStr := "never"
		if !lastRefresh.IsZero() {
			lastRefreshStr = lastRefresh.Format("2006-01-02 15:04:05")
		}

		components := map[string]componentStatus{
			"github": checkGitHub(d),
			"redis":  checkRedis(d),
			"index": {
				OK:            !lastRefresh.IsZero(),
				PluginsLoaded: &pluginCount,
				LastRefresh:   lastRefreshStr,
			},
		}

		response := infraResponse{
			ServiceMode: determineServiceMode(components),
			Components:  components,
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func determineServiceMode(components map[string]componentStatus) string {
	// No token means no submissions can be accepted at all.
	if gh, exists := components["github"]; exists && !gh.OK {
		return "read-only"
	}

	// Redis down = degraded (no reservations, index cache cold)
	if rd, exists := components["redis"]; exists && !rd.OK {
		return "degraded"
	}

	return "full"
}

func checkGitHub(d deps.Deps) componentStatus {
	if d.Contents == nil {
		return componentStatus{
			OK:     false,
			Impact: "submissions-disabled",
			Error:  "token not configured",
		}
	}
	return componentStatus{
		OK:   true,
		Mode: d.Contents.Repo(),
	}
}

func checkRedis(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Mode:   "disabled",
			Impact: "reservations-disabled",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "reservations-disabled",
			Error:  "timeout",
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "reservations-enabled",
	}
}
