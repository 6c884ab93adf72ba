package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/inkwell-labs/inkwell-admin-api/internal/config"
	"github.com/inkwell-labs/inkwell-admin-api/internal/database"
	"github.com/inkwell-labs/inkwell-admin-api/internal/handler"
	"github.com/inkwell-labs/inkwell-admin-api/internal/middleware"
	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
	"github.com/inkwell-labs/inkwell-admin-api/internal/repository"
	"github.com/inkwell-labs/inkwell-admin-api/internal/router"
	"github.com/inkwell-labs/inkwell-admin-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.StaffMember{},
		&models.Blog{},
		&models.Tool{},
		&models.Review{},
		&models.ReviewReply{},
		&models.AuditRecord{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	} else {
		logger.Warn().Msg("nats url not configured, live stream is single-node only")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	staffRepo := repository.NewStaffRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	toolRepo := repository.NewToolRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	auditRepo := repository.NewAuditRecordRepository(db)

	activityService := service.NewActivityService(auditRepo, staffRepo, blogRepo, toolRepo, reviewRepo, redisClient, cfg.ActivityCacheTTL, logger)
	staffAnalyticsService := service.NewStaffAnalyticsService(activityService, staffRepo, blogRepo, reviewRepo, redisClient, cfg.DashboardCacheTTL, logger)
	blogAnalyticsService := service.NewBlogAnalyticsService(blogRepo, staffRepo, redisClient, cfg.DashboardCacheTTL, logger)
	streamService := service.NewActivityStreamService(redisClient, cfg.StreamChannelBase, natsConn, logger)
	moderationService := service.NewModerationService(blogRepo, reviewRepo, toolRepo, auditRepo, streamService, validate, logger)
	exportService := service.NewExportService(activityService, staffRepo, blogRepo, toolRepo, reviewRepo, logger)

	analyticsHandler := handler.NewAnalyticsHandler(staffAnalyticsService, blogAnalyticsService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)
	streamHandler := handler.NewActivityStreamHandler(streamService, logger)
	moderationHandler := handler.NewModerationHandler(moderationService, staffRepo, logger)
	exportHandler := handler.NewExportHandler(exportService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AnalyticsHandler:      analyticsHandler,
		ActivityHandler:       activityHandler,
		ActivityStreamHandler: streamHandler,
		ExportHandler:         exportHandler,
		ModerationHandler:     moderationHandler,
		JWTMiddleware:         middleware.JWTProtected(cfg.JWTSecret),
	})

	streamCtx, stopStream := context.WithCancel(context.Background())
	defer stopStream()
	streamService.Start(streamCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
