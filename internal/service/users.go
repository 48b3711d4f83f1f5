package service

import (
	"github.com/gin-gonic/gin"

	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/middleware"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/models"
	"github.com/leakagelink/spin-to-wealth-online-sub000/pkg/logger"
)

func GetUser(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		c.JSON(401, gin.H{"error": "Invalid token format"})
		return
	}

	user, err := models.GetUserByID(userID)
	if err != nil {
		logger.Error("Failed to get user %d: %v", userID, err)
		c.Status(500)
		return
	}

	c.JSON(200, gin.H{
		"id":        user.ID,
		"nickname":  user.Nickname,
		"avatar_id": user.AvatarID,
		"balance":   user.Balance,
	})
}
