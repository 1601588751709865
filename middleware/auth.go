package middleware

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"yatube-api/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
	// ContextTokenKey stores the raw token so logout can revoke it.
	ContextTokenKey = "token"

	// SessionCookieName carries the token for browser page flows.
	SessionCookieName = "session"

	// LoginPath is where anonymous requests to protected routes are sent.
	LoginPath = "/auth/login/"
)

// extractToken reads the token from the Authorization header, falling back to
// the session cookie used by page flows.
func extractToken(ctx *gin.Context) string {
	if authHeader := ctx.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := ctx.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

// AuthRequired ensures the request is authenticated. Anonymous requests are
// redirected to the login page with a next parameter pointing back at the
// original URL.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := extractToken(ctx)
		if token == "" || utils.IsTokenBlacklisted(token) {
			redirectToLogin(ctx)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			redirectToLogin(ctx)
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Set(ContextTokenKey, token)
		ctx.Next()
	}
}

// OptionalAuth resolves the viewer identity on public pages without ever
// rejecting the request.
func OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := extractToken(ctx)
		if token != "" && !utils.IsTokenBlacklisted(token) {
			if claims, err := utils.ParseToken(token); err == nil {
				ctx.Set(ContextUserIDKey, claims.UserID)
				ctx.Set(ContextUsernameKey, claims.Username)
				ctx.Set(ContextTokenKey, token)
			}
		}
		ctx.Next()
	}
}

func redirectToLogin(ctx *gin.Context) {
	next := ctx.Request.URL.RequestURI()
	utils.Redirect(ctx, LoginPath+"?next="+url.QueryEscape(next))
}
