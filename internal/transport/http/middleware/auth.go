package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/shiptrack/internal/auth"
	"github.com/ErlanBelekov/shiptrack/internal/domain"
)

// ErrInvalidToken is the response body text clients match on to detect an
// expired session.
const ErrInvalidToken = "Invalid token"

// legacyTokenHeader carries a raw token without the Bearer scheme.
const legacyTokenHeader = "token"

type tokenVerifier interface {
	Parse(raw string) (domain.Identity, error)
}

// Auth validates the caller's token and stores the identity under "userID",
// "role" and on the request context. It never reaches the handler on failure.
func Auth(verifier tokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidToken})
			return
		}

		id, err := verifier.Parse(rawToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidToken})
			return
		}

		c.Set("userID", id.UserID)
		c.Set("role", string(id.Role))
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return "", false
		}
		token = strings.TrimSpace(token)
		return token, token != ""
	}

	token := strings.TrimSpace(c.GetHeader(legacyTokenHeader))
	return token, token != ""
}
