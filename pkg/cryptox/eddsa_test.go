package cryptox_test

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/gracechurch/portal/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func parseSigningKey(t *testing.T, pemKey []byte) ed25519.PrivateKey {
	t.Helper()
	block, rest := pem.Decode(pemKey)
	require.NotNil(t, block)
	require.Empty(t, rest)
	require.Equal(t, "PRIVATE KEY", block.Type)

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)
	key, ok := parsed.(ed25519.PrivateKey)
	require.True(t, ok, "got %T", parsed)
	return key
}

func TestNewSigningKeyPEM_SignsSessions(t *testing.T) {
	pemKey, err := cryptox.NewSigningKeyPEM()
	require.NoError(t, err)
	key := parseSigningKey(t, pemKey)

	claims := []byte(`{"sub":"member-1","aud":"portal"}`)
	sig := ed25519.Sign(key, claims)
	require.True(t, ed25519.Verify(key.Public().(ed25519.PublicKey), claims, sig))
}

func TestNewSigningKeyPEM_FreshPerProcess(t *testing.T) {
	a, err := cryptox.NewSigningKeyPEM()
	require.NoError(t, err)
	b, err := cryptox.NewSigningKeyPEM()
	require.NoError(t, err)

	require.NotEqual(t, parseSigningKey(t, a), parseSigningKey(t, b))
}
