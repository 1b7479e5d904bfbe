package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionContextKey = "session_id"
	maxSessionIDLen   = 128
)

// sessionMiddleware resolves the anonymous session from the session cookie,
// issuing a new id (and cookie) when it is missing or malformed. The id is
// stored on the context under session_id.
func (h *Handler) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(h.sessionCookie)
		if err != nil || !validSessionID(id) {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(h.sessionCookie, id, int(h.sessionMaxAge.Seconds()), "/", "", false, false)
		}

		c.Set(sessionContextKey, id)
		c.Next()
	}
}

// sessionID returns the id set by sessionMiddleware.
func sessionID(c *gin.Context) string {
	return c.GetString(sessionContextKey)
}

// validSessionID accepts ids made of letters, digits, '-' and '_' only. The id
// becomes part of storage keys, so separators like ':' are rejected.
func validSessionID(id string) bool {
	if id == "" || len(id) > maxSessionIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
