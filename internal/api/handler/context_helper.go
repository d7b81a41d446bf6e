package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/undarez/camper-splatchs-sub001/internal/policy"
	"github.com/undarez/camper-splatchs-sub001/pkg/response"
)

// GetActor returns the caller injected by JWTAuth or OptionalAuth,
// nil for an anonymous request.
func GetActor(c *gin.Context) *policy.Actor {
	v, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := v.(string)
	if !ok || userID == "" {
		return nil
	}
	return &policy.Actor{
		UserID: userID,
		Email:  c.GetString("email"),
		Role:   c.GetString("role"),
	}
}

// MustGetActor like GetActor but writes a 401 when the caller is anonymous.
// Callers return immediately on ok=false.
func MustGetActor(c *gin.Context) (*policy.Actor, bool) {
	actor := GetActor(c)
	if actor == nil {
		response.Unauthorized(c, 10002, "authentication required")
		return nil, false
	}
	return actor, true
}

// tokenIdentity jti and expiry of the access token in use
func tokenIdentity(c *gin.Context) (string, time.Time) {
	return c.GetString("token_jti"), c.GetTime("token_exp")
}
