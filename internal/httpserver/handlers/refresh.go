package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/plugmarket/plugmarket/internal/httpserver/deps"
)

type refreshResponse struct {
	Triggered bool   `json:"triggered"`
	Reason    string `json:"reason,omitempty"`
}

// Refresh queues a manual index refresh. Non-blocking: a refresh already
// in flight absorbs the trigger.
func Refresh(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if d.RefreshTrigger == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(refreshResponse{
				Triggered: false,
				Reason:    "refresher not running",
			})
			return
		}

		select {
		case d.RefreshTrigger <- struct{}{}:
			w.WriteHeader(http.StatusAccepted)
			_ = json.NewEncoder(w).Encode(refreshResponse{Triggered: true})
		default:
			w.WriteHeader(http.StatusAccepted)
			_ = json.NewEncoder(w).Encode(refreshResponse{
				Triggered: false,
				Reason:    "refresh already pending",
			})
		}
	}
}
