package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"goride-ledger/internal/utils"
	"goride-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	UserTypeDriver    = "driver"
	UserTypePassenger = "passenger"
	UserTypeAdmin     = "admin"
)

// AuthRequired validates the bearer token issued by the identity service and
// puts the caller's ID and type on the gin and request contexts.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		// browsers cannot set headers on a websocket handshake
		if authHeader == "" && c.IsWebsocket() && c.Query("access_token") != "" {
			authHeader = "Bearer " + c.Query("access_token")
		}
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], secret)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, utils.ErrTokenExpired) {
				message = "Token expired"
			}
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
			c.Abort()
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid user ID in token")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("user_type", claims.UserType)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.UserIDKey, userID))

		c.Next()
	}
}

// AdminRequired middleware ensures user is an admin
func AdminRequired() gin.HandlerFunc {
	return requireUserType(UserTypeAdmin, "Admin access required")
}

// DriverRequired middleware ensures user is a driver
func DriverRequired() gin.HandlerFunc {
	return requireUserType(UserTypeDriver, "Driver access required")
}

func requireUserType(want, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userType, exists := c.Get("user_type")
		if !exists {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		if userTypeStr, ok := userType.(string); !ok || userTypeStr != want {
			utils.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", message)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserID returns the authenticated caller set by AuthRequired.
func GetUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return primitive.NilObjectID, false
	}
	userID, ok := value.(primitive.ObjectID)
	return userID, ok
}
