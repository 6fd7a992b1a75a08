// Package auth guards the API with a shared bearer token. When no token is
// configured the API runs open, which is the local-development default.
package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

var ErrBadToken = errors.New("missing or invalid bearer token")

type TokenAuthenticator struct {
	token string
}

func NewTokenAuthenticator(token string) *TokenAuthenticator {
	return &TokenAuthenticator{token: token}
}

func (a *TokenAuthenticator) Authenticate(c *gin.Context) error {
	if a.token == "" {
		return nil
	}
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	presented, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(presented) != a.token {
		return ErrBadToken
	}
	return nil
}
