package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/config"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/history"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/ledger"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/middleware"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/models"
	"github.com/leakagelink/spin-to-wealth-online-sub000/internal/service"
	"github.com/leakagelink/spin-to-wealth-online-sub000/pkg/logger"
	"github.com/leakagelink/spin-to-wealth-online-sub000/pkg/redis"
)

const apiPrefix = "api/"

func Start(cfg *config.Config) {
	gin.DisableConsoleColor()
	middleware.SetJWTKey(cfg.JWTKey)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.BlockBadActorsMiddleware())
	authorized := router.Group("/", middleware.AuthMiddleware())

	redisService := redis.NewRedisService(cfg.RedisAddr, cfg.RedisPassword)
	winsFeed := service.NewWinsFeed(redisService)

	walletStore := models.NewWalletStore(cfg.Game.StartingBalance)
	betLedger := ledger.New(walletStore)
	sessionHistory := history.NewRecorder(history.DefaultCap)

	crashHub := service.NewCrashHub()
	crashService := service.NewCrashService(betLedger, sessionHistory, crashHub, winsFeed, cfg.Game)
	rouletteService := service.NewRouletteService(betLedger, sessionHistory, winsFeed, cfg.Game)
	authService := service.NewAuthService(cfg.Game.StartingBalance)

	sweeper := service.StartSweeper()

	// router
	{
		router.POST(apiPrefix+"users/auth/signup", authService.SignUp)
		router.POST(apiPrefix+"users/auth/login", authService.AuthLogin)
	}

	// authorized
	{
		// users
		authorized.GET(apiPrefix+"users", service.GetUser)

		// Crash
		authorized.GET(apiPrefix+"ws/crash/live", crashHub.LiveCrashWebsocketHandler)
		authorized.POST(apiPrefix+"games/crash/place", crashService.PlaceCrashBet)
		authorized.POST(apiPrefix+"games/crash/cashout", crashService.CashOut)
		authorized.GET(apiPrefix+"games/crash/history", crashService.GetCrashHistory)
		authorized.GET(apiPrefix+"games/crash/info", crashService.GetCrashInfo)

		// Roulette
		authorized.POST(apiPrefix+"games/roulette/place", rouletteService.PlaceRouletteBet)
		authorized.GET(apiPrefix+"games/roulette/info", rouletteService.GetRouletteInfo)
		authorized.GET(apiPrefix+"games/roulette/history", rouletteService.GetRouletteHistory)

		// feeds
		authorized.GET(apiPrefix+"games/wins", winsFeed.GetRecentWins)
		authorized.GET(apiPrefix+"games/history", service.SessionHistoryHandler(sessionHistory))
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router.Handler(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server...")

	crashService.Shutdown()
	betLedger.Close()
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server Shutdown: %v", err)
	}

	<-ctx.Done()
	logger.Info("Server exiting")
}
