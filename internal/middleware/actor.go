package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ActorHeader carries the authenticated user ID set by the upstream auth layer.
const ActorHeader = "X-User-ID"

const actorKey = "actorID"

// RequireActor rejects requests without an actor header.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(ActorHeader))
		if actor == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + ActorHeader + " header"})
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorID returns the actor stored by RequireActor, or "" if none.
func ActorID(c *gin.Context) string {
	return c.GetString(actorKey)
}
