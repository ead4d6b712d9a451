package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/plugmarket/plugmarket/internal/httpserver/deps"
	"github.com/plugmarket/plugmarket/internal/logger"
)

// Plugins serves the current plugin index document.
// Source order: memory snapshot, redis cache, live Contents fetch.
func Plugins(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if doc, ok := d.MemoryIndex.Snapshot(); ok {
			_ = json.NewEncoder(w).Encode(doc)
			return
		}

		ctx := r.Context()

		if d.Store != nil {
			doc, err := d.Store.GetCachedIndex(ctx)
			if err != nil {
				d.Logger.Warn("failed to read cached index", logger.Error(err))
			} else if doc != nil {
				d.MemoryIndex.Update(doc)
				_ = json.NewEncoder(w).Encode(doc)
				return
			}
		}

		if d.Contents != nil {
			doc, _, err := readIndex(ctx, d)
			if err == nil {
				d.MemoryIndex.Update(doc)
				_ = json.NewEncoder(w).Encode(doc)
				return
			}
			d.Logger.Error("failed to fetch index for catalog read", logger.Error(err))
		}

		writeJSON(w, http.StatusServiceUnavailable, submitResponse{
			Success: false,
			Error:   "插件索引暂不可用",
		})
	}
}
