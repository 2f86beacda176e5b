package middleware

import (
	"errors"
	"strings"

	"office-panel/internal/models"
	"office-panel/internal/policy"
	"office-panel/internal/requestcontext"
	"office-panel/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	userKey    = "user"
	sessionKey = "session"
)

// Identity binds the request's actor, request id and client IP to the request
// context for everything downstream. A missing, malformed, expired or revoked
// token leaves the request anonymous; gates further down decide whether that is
// acceptable. The original request is put back on every exit path.
func Identity(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		original := c.Request
		defer func() {
			c.Request = original
		}()

		ctx := original.Context()

		var user *models.User
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if session, err := authService.GetSession(ctx, token); err == nil {
				user = &session.User
				c.Set(userKey, user)
				c.Set(sessionKey, session)
			}
		}

		ctx = requestcontext.WithActor(ctx, user)
		ctx = requestcontext.WithRequestID(ctx, c.GetString(RequestIDKey))
		ctx = requestcontext.WithClientIP(ctx, c.ClientIP())
		c.Request = original.WithContext(ctx)

		c.Next()
	}
}

// Extract token from "Bearer <token>"
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requestcontext.Actor(c.Request.Context()) == nil {
			c.JSON(401, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Authorize applies the policy table before the handler runs. Ownership rules
// only need a signed in user here; the service checks the owner.
func Authorize(res policy.Resource, op policy.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := policy.Precheck(requestcontext.Actor(c.Request.Context()), res, op)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, policy.ErrUnauthenticated):
			c.JSON(401, gin.H{"error": "Authentication required"})
			c.Abort()
		default:
			c.JSON(403, gin.H{"error": "Forbidden: insufficient permissions"})
			c.Abort()
		}
	}
}

// CurrentUser returns the actor bound by Identity.
func CurrentUser(c *gin.Context) *models.User {
	return requestcontext.Actor(c.Request.Context())
}

// CurrentSession returns the session resolved by Identity, if any.
func CurrentSession(c *gin.Context) *models.Session {
	if v, ok := c.Get(sessionKey); ok {
		if session, ok := v.(*models.Session); ok {
			return session
		}
	}
	return nil
}
