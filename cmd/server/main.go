package main // Entry point package

import (
	"context"   // server shutdown and consumer lifetime
	"errors"    // detect http.ErrServerClosed
	"log"       // fallback logging before zap is ready
	"net/http"  // http.ErrServerClosed
	"os"        // signal targets
	"os/signal" // graceful shutdown on SIGINT/SIGTERM
	"syscall"   // SIGTERM
	"time"      // shutdown timeout

	"github.com/joho/godotenv" // .env loading for local development
	"go.uber.org/zap"          // structured logging

	"github.com/iliyamo/septic-crm/internal/config"     // environment configuration
	"github.com/iliyamo/septic-crm/internal/database"   // MySQL connection and schema
	"github.com/iliyamo/septic-crm/internal/handler"    // HTTP handlers
	"github.com/iliyamo/septic-crm/internal/pipeline"   // lead stage model
	"github.com/iliyamo/septic-crm/internal/queue"      // lead.created consumer
	"github.com/iliyamo/septic-crm/internal/repository" // MySQL repositories
	"github.com/iliyamo/septic-crm/internal/router"     // route registration
	"github.com/iliyamo/septic-crm/internal/service"    // mailer, queue notifier and reminders
	"github.com/iliyamo/septic-crm/internal/storage"    // uploaded files
	"github.com/iliyamo/septic-crm/internal/utils"      // token service
)

func main() {
	_ = godotenv.Load() // optional; real environment wins
	cfg := config.Load()

	logger, err := config.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.InsecureSecrets() {
		logger.Warn("JWT_SECRET or JWT_REFRESH_SECRET not set; using built-in development secrets, tokens can be forged")
	}

	stages, err := pipeline.Parse(cfg.Pipeline.Stages)
	if err != nil {
		logger.Fatal("invalid PIPELINE_STAGES", zap.Error(err))
	}
	pl := pipeline.New(stages, cfg.Pipeline.Strict)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(context.Background(), db); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	files, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		logger.Fatal("upload directory", zap.Error(err))
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Info("redis unavailable; rate limiting and stats cache disabled")
	} else {
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// New-lead notifications: straight to SMTP, or through RabbitMQ when a
	// broker is configured, with the consumer running in this process.
	mailer := service.NewMailer(cfg, logger.Named("mailer"))
	var notifier handler.Notifier = mailer
	if cfg.RabbitURL != "" {
		notifier = service.NewQueueNotifier(cfg.RabbitURL, mailer, logger.Named("queue"))
		go func() {
			deliver := func(ctx context.Context, ev queue.LeadCreatedEvent) error {
				return mailer.NotifyNewLead(ctx, ev.Lead())
			}
			if err := queue.StartLeadConsumer(ctx, cfg.RabbitURL, deliver, logger.Named("consumer")); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("lead consumer stopped", zap.Error(err))
			}
		}()
	}

	tokens := utils.NewTokenService(cfg.AccessSecret, cfg.RefreshSecret)
	users := repository.NewUserRepo(db)
	leads := repository.NewLeadRepo(db)
	notes := repository.NewNoteRepo(db)
	activities := repository.NewActivityRepo(db)
	events := repository.NewEventRepo(db)
	docs := repository.NewDocumentRepo(db)

	if cfg.Reminder.Interval > 0 {
		reminder := service.NewReminder(activities, mailer, cfg.Reminder.Lead, logger.Named("reminder"))
		go func() {
			if err := reminder.Run(ctx, cfg.Reminder.Interval); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("task reminders stopped", zap.Error(err))
			}
		}()
	}

	e := router.New(router.Options{
		Prefix:      cfg.APIPrefix,
		CORSOrigins: cfg.CORSOrigins,
		UploadDir:   cfg.UploadDir,
		BodyLimit:   "11M",
		RateLimit:   config.LoadRateLimitConfig(),
		Cache:       config.LoadCacheConfig(),
		Redis:       rdb,
		Log:         logger.Named("http"),
	}, tokens, router.Handlers{
		Auth:       handler.NewAuthHandler(users, tokens, cfg.BcryptCost, logger),
		Users:      handler.NewUserHandler(users, cfg.BcryptCost, logger),
		Leads:      handler.NewLeadHandler(leads, notes, activities, docs, files, pl, logger),
		Contact:    handler.NewContactHandler(leads, users, notes, notifier, pl, logger),
		Activities: handler.NewActivityHandler(activities, logger),
		Calendar:   handler.NewCalendarHandler(events, logger),
		Notes:      handler.NewNoteHandler(notes, logger),
		Documents:  handler.NewDocumentHandler(docs, files, logger),
		Dashboard:  handler.NewDashboardHandler(repository.NewDashboardRepo(db), pl, logger),
		Pipeline:   handler.Pipeline(pl),
	})

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("prefix", cfg.APIPrefix))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
