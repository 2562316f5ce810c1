package handlers

import (
	"goride-ledger/internal/middleware"
	"goride-ledger/internal/utils"
	"goride-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// base carries what every resource handler needs.
type base struct {
	logger *logger.Logger
}

// currentUser returns the authenticated caller, writing a 401 when missing.
func currentUser(c *gin.Context) (primitive.ObjectID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
	}
	return userID, ok
}

// pathID parses an ObjectID path parameter, writing a 400 when malformed.
func pathID(c *gin.Context, name, resource string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+resource+" ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

func listResponse(c *gin.Context, message string, items interface{}, params *utils.PaginationParams, total int64) {
	utils.SuccessResponseWithMeta(c, message, items, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		RequestID:  c.GetString("request_id"),
	})
}
