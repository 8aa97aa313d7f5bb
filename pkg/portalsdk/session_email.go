package portalsdk

import (
	"context"
	"net/http"
	"strconv"
)

// EmailStats returns email monitor statistics and limiter usage.
func (s *Session) EmailStats(ctx context.Context) (*EmailStatsResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/admin/email/stats", nil)
	if err != nil {
		return nil, err
	}

	var out EmailStatsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

// EmailLogs returns up to limit recent log entries, newest first. A
// non-positive limit uses the server default.
func (s *Session) EmailLogs(ctx context.Context, limit int) ([]EmailLogResponse, error) {
	path := "/v1/admin/email/logs"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	resp, err := s.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out EmailLogListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return out.Logs, nil
}
