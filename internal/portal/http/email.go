package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gracechurch/portal/internal/portal/email"
	"github.com/gracechurch/portal/pkg/httpx"
	"github.com/gracechurch/portal/pkg/portalsdk"
	"github.com/gracechurch/portal/pkg/slogx"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = email.DefaultLogCapacity
)

// EmailHandler exposes outbound email diagnostics.
type EmailHandler struct {
	Monitor *email.Monitor
	Limiter *email.RateLimiter
}

// HandleStats godoc
//
//	@Summary		Email statistics
//	@Description	Monitor counters over the in-memory log plus the limiter's current window usage.
//	@Tags			Email
//	@Produce		json
//	@Success		200	{object}	portalsdk.EmailStatsResponse	"stats"
//	@Failure		401	{object}	portalsdk.ErrorResponse			"unauthorized"
//	@Failure		403	{object}	portalsdk.ErrorResponse			"admin_required"
//	@Security		BearerAuth
//	@Router			/v1/admin/email/stats [get].
func (h *EmailHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	usage, err := h.Limiter.Usage(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to read limiter usage", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, portalsdk.ErrorCodeServerError, "Failed to read email statistics")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toEmailStatsResponse(h.Monitor.Statistics(), usage))
}

// HandleLogs godoc
//
//	@Summary		Recent email log entries
//	@Tags			Email
//	@Produce		json
//	@Param			limit	query		int								false	"Maximum entries (default 50, max 100)"
//	@Success		200		{object}	portalsdk.EmailLogListResponse	"logs, newest first"
//	@Failure		400		{object}	portalsdk.ErrorResponse			"invalid_request"
//	@Security		BearerAuth
//	@Router			/v1/admin/email/logs [get].
func (h *EmailHandler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httpx.WriteError(w, http.StatusBadRequest, portalsdk.ErrorCodeInvalidRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLogLimit)
	}

	httpx.WriteJSON(w, http.StatusOK, portalsdk.EmailLogListResponse{
		Logs: toEmailLogResponses(h.Monitor.Recent(limit)),
	})
}
