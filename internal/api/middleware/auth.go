package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/undarez/camper-splatchs-sub001/internal/policy"
	"github.com/undarez/camper-splatchs-sub001/pkg/jwt"
	"github.com/undarez/camper-splatchs-sub001/pkg/redis"
	"github.com/undarez/camper-splatchs-sub001/pkg/response"
)

// JWTAuth requires a valid access token in Authorization: Bearer <token>.
// Revoked tokens are rejected when rdb is available; without Redis the
// blacklist check is skipped.
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "missing authorization header")
			c.Abort()
			return
		}
		if !authenticate(c, jwtMgr, rdb, logger, authHeader) {
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth injects the caller when a token is present and lets
// anonymous requests through. A token that is present but invalid is
// still rejected.
func OptionalAuth(jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		if !authenticate(c, jwtMgr, rdb, logger, authHeader) {
			c.Abort()
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger, authHeader string) bool {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		response.Unauthorized(c, 10002, "malformed authorization header")
		return false
	}

	claims, err := jwtMgr.ParseToken(parts[1])
	if err != nil {
		response.Unauthorized(c, 10002, "token invalid or expired")
		return false
	}

	if claims.TokenType != jwt.TokenTypeAccess {
		response.Unauthorized(c, 10002, "wrong token type")
		return false
	}

	if rdb != nil {
		revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
		if err != nil {
			// Redis hiccups degrade to accepting the token
			logger.Warn("blacklist lookup failed", zap.Error(err))
		} else if revoked {
			response.Unauthorized(c, 10002, "token revoked")
			return false
		}
	}

	c.Set("user_id", claims.UserID)
	c.Set("email", claims.Email)
	c.Set("role", claims.Role)
	c.Set("token_jti", claims.ID)
	if claims.ExpiresAt != nil {
		c.Set("token_exp", claims.ExpiresAt.Time)
	}
	return true
}

// RequireAdmin lets through callers the policy recognises as administrators.
// Must run after JWTAuth.
func RequireAdmin(pol *policy.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			response.Unauthorized(c, 10002, "authentication required")
			c.Abort()
			return
		}

		actor := &policy.Actor{UserID: userID, Email: c.GetString("email"), Role: c.GetString("role")}
		if !pol.IsAdmin(actor) {
			response.Forbidden(c, 10003, "administrator privilege required")
			c.Abort()
			return
		}

		c.Next()
	}
}
