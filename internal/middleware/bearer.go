package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/fttn/logproxy/pkg/response"
	"github.com/gin-gonic/gin"
)

// ExtractBearerToken pulls the token out of an Authorization header
// value. The "Bearer" scheme matches case-insensitively and surrounding
// whitespace is tolerated. Returns false if the header is empty, uses a
// different scheme, or carries no token.
func ExtractBearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// ValidateBearer reports whether the presented token equals the
// configured secret. The comparison is constant time so a mismatch leaks
// nothing about the position of the first differing byte. An empty
// configured secret never validates.
func ValidateBearer(presented, configured string) bool {
	if configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(configured)) == 1
}

// BearerAuth returns a middleware that guards the ingestion endpoint with
// a shared-secret bearer token. Every failure mode returns the same
// generic 401.
func BearerAuth(configuredToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := ExtractBearerToken(c.GetHeader("Authorization"))
		if !ok || !ValidateBearer(token, configuredToken) {
			response.Unauthorized(c, "missing or invalid authentication token")
			c.Abort()
			return
		}
		c.Next()
	}
}
