//go:build e2e

package portal_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gracechurch/portal/pkg/portalsdk"
)

// TestRateLimitRegisterEndpoint verifies /v1/auth/register keeps its strict
// per-IP limit (5 req/min) when no overrides are configured.
func TestRateLimitRegisterEndpoint(t *testing.T) {
	baseURL, cleanup := setupPortalContainer(t, map[string]string{
		"RATELIMIT_STRICT_REQUESTS":   "",
		"RATELIMIT_STRICT_WINDOW_SEC": "",
		"RATELIMIT_STRICT_BURST":      "",
	})
	defer cleanup()

	client := portalsdk.NewSDKClient(baseURL)
	req := portalsdk.RegisterRequest{Email: "flood@example.org", Password: "flooding-1234"}

	for i := range 5 {
		_, err := client.Register(t.Context(), req)
		apiErr := assertAPIError(t, err, portalsdk.ErrorCodeNotInvited)
		require.NotEqual(t, http.StatusTooManyRequests, apiErr.StatusCode, "request %d should not be limited", i+1)
	}

	_, err := client.Register(t.Context(), req)
	var apiErr *portalsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}
