package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/plugmarket/plugmarket/internal/domain"
	"github.com/plugmarket/plugmarket/internal/github"
	"github.com/plugmarket/plugmarket/internal/httpserver/deps"
	"github.com/plugmarket/plugmarket/internal/logger"
)

// submitResponse is the JSON envelope of the submission endpoint.
type submitResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// apiError carries an HTTP status plus the localized client-facing message.
// Upstream detail never travels in it; that is logged server-side only.
type apiError struct {
	status  int
	message string
}

func writeJSON(w http.ResponseWriter, status int, resp submitResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeAPIError(w http.ResponseWriter, e *apiError) {
	writeJSON(w, e.status, submitResponse{Success: false, Error: e.message})
}

// upstreamError maps a Contents API failure to a 500 whose message embeds
// the upstream status code when one is known.
func upstreamError(action string, err error) *apiError {
	var serr *github.StatusError
	if errors.As(err, &serr) {
		return &apiError{
			status:  http.StatusInternalServerError,
			message: fmt.Sprintf("%s (HTTP %d)", action, serr.StatusCode),
		}
	}
	return &apiError{status: http.StatusInternalServerError, message: action}
}

// Submit handles one plugin submission: validate, derive the config and
// index documents, then publish plugin.py, config.json and the updated
// plugins.json to the target repository.
//
// Default ordering reads the index and rejects duplicates before any file
// is written. LegacyWriteOrder restores the original service's ordering,
// which wrote both plugin files before checking for duplicates and could
// leave orphan files behind a 400.
func Submit(d deps.Deps) http.HandlerFunc {
	now := d.TimeNow
	if now == nil {
		now = time.Now
	}

	return func(w http.ResponseWriter, r *http.Request) {
		// Only POST carries a submission; everything else is refused with
		// the same JSON envelope (CORS headers are set by middleware).
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, submitResponse{
				Success: false,
				Error:   "Method not allowed",
			})
			return
		}

		var req domain.SubmissionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, submitResponse{
				Success: false,
				Error:   "请求体不是有效的 JSON",
			})
			return
		}

		if verr := req.Validate(); verr != nil {
			writeJSON(w, http.StatusBadRequest, submitResponse{Success: false, Error: verr.Message})
			return
		}

		// Configuration gate: without a token no remote call can succeed.
		if d.Contents == nil {
			d.Logger.Error("submission rejected: no github token configured")
			writeJSON(w, http.StatusInternalServerError, submitResponse{
				Success: false,
				Error:   "服务器配置错误：未配置 GitHub Token",
			})
			return
		}

		ctx := r.Context()
		d.Logger.Info("plugin submission received",
			logger.String("id", req.ID),
			logger.String("cn_name", req.CNName),
			logger.String("author", req.Author))

		// Best-effort reservation: narrows the window where two concurrent
		// submissions of the same id both pass the index check.
		if d.Store != nil {
			ok, err := d.Store.Reserve(ctx, req.ID, d.LockTTL)
			if err != nil {
				d.Logger.Warn("reservation unavailable, continuing without lock",
					logger.String("id", req.ID), logger.Error(err))
			} else if !ok {
				writeJSON(w, http.StatusBadRequest, submitResponse{
					Success: false,
					Error:   fmt.Sprintf("插件 %s 正在提交中，请稍后重试", req.ID),
				})
				return
			} else {
				defer func() {
					// The published index is authoritative once we return;
					// the reservation has served its purpose either way.
					if err := d.Store.Release(context.WithoutCancel(ctx), req.ID); err != nil {
						d.Logger.Warn("failed to release reservation",
							logger.String("id", req.ID), logger.Error(err))
					}
				}()
			}
		}

		cfgDoc := domain.BuildConfigDocument(&req, d.Catalog.FallbackLabel())
		entry := domain.BuildIndexEntry(cfgDoc, d.DownloadBaseURL, d.Contents.Repo(), d.Contents.Branch())
		date := now().Format("2006-01-02")

		if d.LegacyWriteOrder {
			if aerr := writePluginFiles(ctx, d, &req, cfgDoc); aerr != nil {
				writeAPIError(w, aerr)
				return
			}
			if aerr := publishIndexEntry(ctx, d, entry, date); aerr != nil {
				// A duplicate found here leaves the two files just written
				// in place. That is the legacy behavior, kept verbatim.
				writeAPIError(w, aerr)
				return
			}
		} else {
			doc, _, err := readIndex(ctx, d)
			if err != nil {
				writeAPIError(w, upstreamError("获取插件索引失败", err))
				return
			}
			if doc.Has(req.ID) {
				writeJSON(w, http.StatusBadRequest, submitResponse{
					Success: false,
					Error:   fmt.Sprintf("插件 %s 已存在", req.ID),
				})
				return
			}
			if aerr := writePluginFiles(ctx, d, &req, cfgDoc); aerr != nil {
				writeAPIError(w, aerr)
				return
			}
			if aerr := publishIndexEntry(ctx, d, entry, date); aerr != nil {
				writeAPIError(w, aerr)
				return
			}
		}

		// Keep the local snapshot warm and let the refresher reconcile.
		d.MemoryIndex.Append(entry, date)
		if d.RefreshTrigger != nil {
			select {
			case d.RefreshTrigger <- struct{}{}:
			default:
			}
		}

		d.Logger.Info("plugin published",
			logger.String("id", req.ID),
			logger.String("version", cfgDoc.Version))

		writeJSON(w, http.StatusOK, submitResponse{
			Success: true,
			Message: fmt.Sprintf("插件 %s 提交成功！", req.CNName),
		})
	}
}

// readIndex fetches the shared index with its sha token.
// A missing index file yields an empty document and no token: the
// subsequent write then creates plugins.json for the first time.
func readIndex(ctx context.Context, d deps.Deps) (*domain.PluginIndexDocument, string, error) {
	file, err := d.Contents.GetFile(ctx, d.IndexPath)
	if err != nil {
		if errors.Is(err, github.ErrNotFound) {
			return domain.NewIndexDocument(), "", nil
		}
		return nil, "", err
	}

	var doc domain.PluginIndexDocument
	if err := json.Unmarshal(file.Content, &doc); err != nil {
		return nil, "", fmt.Errorf("failed to parse index: %w", err)
	}
	return &doc, file.SHA, nil
}

// writePluginFiles publishes plugin.py and config.json.
// The source write failing means the config write is never attempted;
// a config failure leaves the source file in place (no rollback).
func writePluginFiles(ctx context.Context, d deps.Deps, req *domain.SubmissionRequest, cfgDoc domain.PluginConfigDocument) *apiError {
	msg := fmt.Sprintf("添加插件: %s", req.CNName)
	if err := d.Contents.PutFile(ctx, domain.SourcePath(req.ID), msg, []byte(req.Code), ""); err != nil {
		return upstreamError("上传插件代码失败", err)
	}

	cfgJSON, err := json.MarshalIndent(cfgDoc, "", "  ")
	if err != nil {
		return &apiError{status: http.StatusInternalServerError, message: "生成插件配置失败"}
	}
	msg = fmt.Sprintf("添加插件配置: %s", req.CNName)
	if err := d.Contents.PutFile(ctx, domain.ConfigPath(req.ID), msg, cfgJSON, ""); err != nil {
		return upstreamError("上传插件配置失败", err)
	}

	return nil
}

// publishIndexEntry appends entry to the shared index and writes it back
// conditioned on the sha token read alongside. A token conflict (another
// submission landed in between) re-reads and retries, bounded by
// IndexMaxRetries; the duplicate check is repeated against every re-read.
// The write result is always checked: success is only reported once the
// index update is durably accepted.
func publishIndexEntry(ctx context.Context, d deps.Deps, entry domain.PluginIndexEntry, date string) *apiError {
	attempts := d.IndexMaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		doc, sha, err := readIndex(ctx, d)
		if err != nil {
			return upstreamError("获取插件索引失败", err)
		}
		if doc.Has(entry.ID) {
			return &apiError{
				status:  http.StatusBadRequest,
				message: fmt.Sprintf("插件 %s 已存在", entry.ID),
			}
		}

		doc.Plugins = append(doc.Plugins, entry)
		doc.LastUpdated = date

		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return &apiError{status: http.StatusInternalServerError, message: "生成插件索引失败"}
		}

		msg := fmt.Sprintf("更新插件索引: 添加 %s", entry.ID)
		err = d.Contents.PutFile(ctx, d.IndexPath, msg, data, sha)
		if err == nil {
			return nil
		}
		if errors.Is(err, github.ErrConflict) {
			d.Logger.Warn("index write conflict, re-reading",
				logger.String("id", entry.ID),
				logger.Int("attempt", attempt+1))
			continue
		}
		return upstreamError("更新插件索引失败", err)
	}

	return &apiError{
		status:  http.StatusInternalServerError,
		message: "更新插件索引失败：并发冲突过多，请重试",
	}
}
