//go:build e2e

package portal_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gracechurch/portal/pkg/portalsdk"
)

func TestLivezEndpoint(t *testing.T) {
	baseURL, cleanup := setupPortalContainer(t, nil)
	defer cleanup()

	client := portalsdk.NewSDKClient(baseURL)

	health, err := client.GetLiveness(t.Context())
	assertHealthy(t, health, err)
}

func TestReadyzEndpoint(t *testing.T) {
	baseURL, cleanup := setupPortalContainer(t, nil)
	defer cleanup()

	client := portalsdk.NewSDKClient(baseURL)

	health, err := client.GetReadiness(t.Context())
	assertHealthy(t, health, err)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Identity)
}

func TestMetricsEndpoint(t *testing.T) {
	baseURL, cleanup := setupPortalContainer(t, nil)
	defer cleanup()

	client := portalsdk.NewSDKClient(baseURL)
	_, err := client.GetLiveness(t.Context())
	require.NoError(t, err)

	resp, err := http.Get(baseURL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "http_requests_total")
}

func TestJWKSEndpoint(t *testing.T) {
	baseURL, cleanup := setupPortalContainer(t, nil)
	defer cleanup()

	resp, err := http.Get(baseURL + "/.well-known/jwks.json")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "application/json")
}
