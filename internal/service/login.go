package service

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leakagelink/spin-to-wealth-online-sub000/cmd/db"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/middleware"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/models"
	"github.com/leakagelink/spin-to-wealth-online-sub000/pkg/logger"
)

const AccessExpiration = 10 // hours

type Token struct {
	AccessToken string `json:"access_token"`
}

type Login struct {
	Nickname      string `json:"nickname" binding:"required"`
	Password      string `json:"password" binding:"required"`
	PasswordRetry string `json:"password_retry"`
}

// AuthService creates accounts and issues access tokens. New accounts get
// the configured starting balance.
type AuthService struct {
	startingBalance float64
}

func NewAuthService(startingBalance float64) *AuthService {
	return &AuthService{startingBalance: startingBalance}
}

func (a *AuthService) SignUp(c *gin.Context) {
	var req Login
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid data"})
		return
	}

	if req.Password != req.PasswordRetry {
		c.JSON(400, gin.H{"error": "Passwords do not match"})
		return
	}

	exists, err := models.CheckIfUserExistsByNickname(req.Nickname)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}
	if exists {
		c.JSON(400, gin.H{"error": "Nickname already taken"})
		return
	}

	hash, err := middleware.HashPassword(req.Password)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	user := models.User{
		Nickname: req.Nickname,
		Balance:  a.startingBalance,
		Password: hash,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		logger.Error("Failed to create user: %v", err)
		c.Status(500)
		return
	}

	issueToken(c, &user)
}

func (a *AuthService) AuthLogin(c *gin.Context) {
	var req Login
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind request: %v", err)
		c.JSON(400, gin.H{"error": "Invalid data"})
		return
	}

	user, err := models.GetUserWithPassword(req.Nickname)
	if err != nil {
		logger.Error("Failed to get user: %v", err)
		c.JSON(400, gin.H{"error": "Invalid data"})
		return
	}

	if !middleware.ComparePasswords(user.Password, req.Password) {
		c.JSON(400, gin.H{"error": "Invalid data"})
		return
	}

	issueToken(c, user)
}

func issueToken(c *gin.Context, user *models.User) {
	accessExpiration := time.Now().Unix() + int64(AccessExpiration*60*60)

	access, err := middleware.TokenNew(user.ID, accessExpiration, middleware.TokenAccess)
	if err != nil {
		logger.Error("%v", err)
		c.AbortWithStatus(500)
		return
	}

	c.JSON(200, Token{AccessToken: access})
}
