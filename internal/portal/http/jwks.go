package http

import (
	"net/http"

	"github.com/gracechurch/portal/pkg/httpx"
	"github.com/gracechurch/portal/pkg/jwtx"
)

// jwksSource is implemented by identity providers that sign their own tokens.
type jwksSource interface {
	PublicJWKS() jwtx.JWKS
}

// JWKSHandler exposes the JSON Web Key Set for public key discovery.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify access tokens issued by the local identity provider.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	jwtx.JWKS	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(src jwksSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, src.PublicJWKS())
	}
}
