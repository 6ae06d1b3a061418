package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"TR_telegram_taskbot/internal/api"
	"TR_telegram_taskbot/internal/bot"
	"TR_telegram_taskbot/internal/cache"
	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/internal/repository"
	"TR_telegram_taskbot/internal/service"
	"TR_telegram_taskbot/internal/session"
	"TR_telegram_taskbot/pkg/auth"
	"TR_telegram_taskbot/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	settingsService := service.NewSettingsService(repo, model.Settings{
		CurrencyName:  cfg.Rewards.CurrencyName,
		MinWithdraw:   cfg.Rewards.MinWithdraw,
		ReferralBonus: cfg.Rewards.ReferralBonus,
	})
	if err := settingsService.Load(ctx); err != nil {
		zapLogger.Fatal("Failed to load settings", zap.Error(err))
	}

	userCache := cache.NewUserCache()
	catalog := cache.NewTaskCatalog(repo)
	if err := catalog.Rebuild(ctx); err != nil {
		zapLogger.Fatal("Failed to load task catalog", zap.Error(err))
	}

	userService := service.NewUserService(repo, userCache)
	catalog.OnRefresh = func(ctx context.Context) {
		userCache.Reconcile(ctx, repo.GetUserByTelegramID)
	}

	botAPI, err := bot.NewAPI(cfg.Bot.Token, cfg.Bot.Debug)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Telegram", zap.Error(err))
	}
	tg := bot.NewTelegramClient(botAPI)

	referralService := service.NewReferralService(repo, repo, settingsService, tg)
	taskService := service.NewTaskService(repo, catalog)
	verificationService := service.NewVerificationService(repo, taskService, referralService, tg)
	withdrawService := service.NewWithdrawService(repo, settingsService)
	profileService := service.NewProfileService(repo, referralService)
	broadcaster := service.NewBroadcaster(repo, tg)

	sessions := session.NewStore()

	b := bot.New(botAPI, cfg.Bot, sessions, bot.Services{
		Users:        userService,
		Profile:      profileService,
		Referrals:    referralService,
		Tasks:        taskService,
		Verification: verificationService,
		Withdraw:     withdrawService,
		Settings:     settingsService,
		Broadcaster:  broadcaster,
	})

	telegramAuth := auth.NewTelegramAuth(cfg.Bot.Token, cfg.Bot.AdminIDs, cfg.Bot.Debug)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	corsConfig.AllowHeaders = []string{"*"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	a := router.Group("/api/v1")
	api.NewAdminRoutes(a, userService, taskService, withdrawService, settingsService, telegramAuth)
	feed := api.NewCompletionFeed(a, verificationService, telegramAuth)

	go sessions.Run(ctx)
	go userCache.Run(ctx)
	go catalog.Run(ctx)
	go feed.Run(ctx)
	go b.Run(ctx)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		zapLogger.Info("Starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server shutdown failed", zap.Error(err))
	}
}
