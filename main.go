package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"repairhub/config"
	"repairhub/cron"
	"repairhub/database"
	"repairhub/database/kvstore"
	"repairhub/database/repository"
	"repairhub/handlers"
	"repairhub/middleware"
	"repairhub/routes"
	"repairhub/services/admin"
	"repairhub/services/booking"
	"repairhub/services/catalog"
	"repairhub/services/draft"
	"repairhub/services/notification"
	"repairhub/services/ranking"
	"repairhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitRedis()
	db := database.DB()

	// repositories.
	agentRepo := repository.NewMongoAgentRepo(db)
	applicationRepo := repository.NewMongoApplicationRepo(db)
	cityRepo := repository.NewMongoCityRepo(db)
	catalogRepo := repository.NewMongoCatalogRepo(db)
	bookingRepo := repository.NewMongoBookingRepo(db)
	notificationRepo := repository.NewMongoNotificationRepo(db)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	for _, r := range []any{agentRepo, applicationRepo, cityRepo, catalogRepo, bookingRepo, notificationRepo} {
		if ix, ok := r.(repository.Indexer); ok {
			if err := ix.EnsureIndexes(indexCtx); err != nil {
				logger.Warn("main: failed to ensure indexes", zap.Error(err))
			}
		}
	}
	cancelIndex()

	// stores.
	sessions := kvstore.NewRedisStore(utils.GetCacheClient(), "", cfg.SessionTTL)
	var draftStore kvstore.Store
	if cfg.DraftStore == "memory" {
		draftStore = kvstore.NewMemoryStore()
	} else {
		draftStore = kvstore.NewRedisStore(utils.GetDraftClient(), "", cfg.DraftExpiry)
	}
	drafts := draft.NewManager(draftStore, logger, cfg.DraftExpiry, cfg.DraftDebounce)

	// services.
	catalogService := catalog.NewService(cityRepo, catalogRepo, cfg.CitiesCacheTTL, logger)
	rankingEngine := ranking.NewEngine(agentRepo, logger)

	notificationService, err := notification.NewDefaultNotificationService(notificationRepo, agentRepo, logger)
	if err != nil {
		logger.Fatal("main: failed to initialize notification service", zap.Error(err))
	}

	queue := asynq.NewClient(cron.QueueRedisOpt())
	submitter := booking.NewSubmitter(bookingRepo, queue, logger)
	sessionService := booking.NewSessionService(sessions, drafts, catalogService, rankingEngine, submitter, logger)
	adminService := admin.NewDefaultAdminService(cityRepo, catalogRepo, agentRepo, applicationRepo, catalogService, logger)

	worker := cron.InitBookingWorker(notificationService)

	handlerBundle := &handlers.HandlerBundle{
		Catalog:       handlers.NewCatalogHandler(catalogService),
		Agents:        handlers.NewAgentHandler(rankingEngine),
		Booking:       handlers.NewBookingHandler(sessionService, submitter),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Admin:         handlers.NewAdminHandler(adminService),
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.GinZapLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle)

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	utils.StartHealthMonitor(monitorCtx, utils.RedisClients(), database.MongoClient)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}

	// pending debounced drafts are written before the stores go away.
	drafts.Flush()
	worker.Shutdown()
	if err := queue.Close(); err != nil {
		logger.Warn("main: failed to close task queue client", zap.Error(err))
	}
	stopMonitor()
	if err := database.Disconnect(ctx); err != nil {
		logger.Warn("main: failed to disconnect from MongoDB", zap.Error(err))
	}
	_ = logger.Sync()

	logger.Sugar().Info("main: server stopped gracefully")
}
