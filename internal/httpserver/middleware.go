package httpserver

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/internal/domain"
)

const (
	requestIDHeader = "X-Request-ID"

	principalKey   = "principal"
	accessTokenKey = "accessToken"
)

// requestID propagates the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Set(requestIDHeader, id)
		c.Next()
	}
}

// authMiddleware rejects requests without a valid bearer access token and
// stores the resolved principal on the context.
func authMiddleware(users UserService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "authentication credentials were not provided"})
			return
		}
		p, err := users.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Abort()
			writeError(c, logger, err)
			return
		}
		c.Set(principalKey, p)
		c.Set(accessTokenKey, token)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func principal(c *gin.Context) domain.Principal {
	v, _ := c.Get(principalKey)
	p, _ := v.(domain.Principal)
	return p
}

// validID reports whether raw is a well-formed resource id. Malformed ids
// cannot match any row and are answered as not found.
func validID(raw string) bool {
	_, err := uuid.Parse(raw)
	return err == nil
}
