package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"servicehub/config"
	"servicehub/cron"
	"servicehub/database"
	"servicehub/database/repository"
	"servicehub/handlers"
	"servicehub/middleware"
	"servicehub/routes"
	"servicehub/services/assignment"
	"servicehub/services/availability"
	"servicehub/services/booking"
	"servicehub/services/matching"
	"servicehub/services/notification"
	"servicehub/services/serviceman"
	"servicehub/services/workload"
	"servicehub/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	cacheClient := utils.GetCacheClient()
	db := database.Database()

	// repositories.
	repos, err := repository.Open(db, cacheClient, config.AppConfig.DirectoryCacheTTL, logger.Named("directory"))
	if err != nil {
		logger.Fatal("main: failed to initialize repositories", zap.Error(err))
	}
	servicemen := repos.Servicemen

	// lifecycle events: durable queue for delivery plus a live channel.
	queueClient := asynq.NewClient(cron.QueueRedisOpt())
	defer queueClient.Close()
	events := notification.Fanout{
		notification.NewQueuePublisher(queueClient),
		notification.NewChannelPublisher(cacheClient, config.AppConfig.LifecycleChannel),
	}

	// matching and assignment.
	index := availability.NewIndex(config.Location())
	engine := matching.NewEngine(servicemen, index, matching.ScoringPolicy{
		DistanceWeight: config.AppConfig.ScoreDistanceWeight,
		WorkloadWeight: config.AppConfig.ScoreWorkloadWeight,
		RatingWeight:   config.AppConfig.ScoreRatingWeight,
	}, logger.Named("matching"))
	coordinator := assignment.NewCoordinator(
		workload.NewTracker(servicemen),
		config.AppConfig.AssignMaxAttempts,
		logger.Named("assignment"),
	)

	// services.
	bookingService, err := booking.NewDefaultBookingService(repos.Bookings, repos.Directory, engine, coordinator, events, booking.Policy{
		CancelNotice:    time.Duration(config.AppConfig.CancelNoticeHours) * time.Hour,
		PlatformFeeRate: config.AppConfig.PlatformFeeRate,
		AutoAssign:      config.AppConfig.AutoAssignmentEnabled,
		AutoConfirm:     config.AppConfig.AutoConfirmOnAssign,
	}, logger.Named("booking"))
	if err != nil {
		logger.Fatal("main: failed to initialize booking service", zap.Error(err))
	}
	servicemanService := serviceman.NewDefaultServicemanService(servicemen, logger.Named("serviceman"))

	// background work.
	worker := cron.InitLifecycleWorker(notification.NewLogDispatcher(logger.Named("notifications")))
	sweep, err := cron.NewRematchSweep(config.AppConfig.RematchSchedule, config.AppConfig.RematchBatchSize, bookingService, logger.Named("rematch"))
	if err != nil {
		logger.Fatal("main: invalid REMATCH_SCHEDULE", zap.String("schedule", config.AppConfig.RematchSchedule), zap.Error(err))
	}
	sweep.Start()

	healthCtx, stopHealth := context.WithCancel(context.Background())
	defer stopHealth()
	utils.StartHealthMonitor(healthCtx, []*redis.Client{cacheClient}, database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	if err := middleware.TrustProxies(router, config.AppConfig.TrustedProxies); err != nil {
		logger.Fatal("main: invalid TRUSTED_PROXIES", zap.Strings("proxies", config.AppConfig.TrustedProxies), zap.Error(err))
	}
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	handlerBundle := &handlers.HandlerBundle{
		Booking:    handlers.NewBookingHandler(bookingService),
		Serviceman: handlers.NewServicemanHandler(servicemanService),
		Health:     handlers.HealthHandler,
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	<-sweep.Stop().Done()
	worker.Shutdown()
	if err := database.Disconnect(ctx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
