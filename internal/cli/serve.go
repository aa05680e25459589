package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/dedirosandiaj/problem-log-new/internal/api/http"
	"github.com/dedirosandiaj/problem-log-new/internal/api/http/handlers"
	"github.com/dedirosandiaj/problem-log-new/internal/auth"
	"github.com/dedirosandiaj/problem-log-new/internal/events"
	"github.com/dedirosandiaj/problem-log-new/internal/observability"
	"github.com/dedirosandiaj/problem-log-new/internal/persistence"
	"github.com/dedirosandiaj/problem-log-new/internal/realtime"
	"github.com/dedirosandiaj/problem-log-new/internal/repository"
	"github.com/dedirosandiaj/problem-log-new/internal/service"
	"github.com/dedirosandiaj/problem-log-new/internal/worker"
)

const (
	shutdownTimeout = 10 * time.Second
	minBodyLimit    = 4 * 1024 * 1024
)

// NewServeCommand runs the HTTP API.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  `Start the back-office API, the complaint live feed and the notification worker.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	rt, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer rt.close()
	if err := rt.requireDatabase(); err != nil {
		return err
	}
	cfg, logger := rt.cfg, rt.logger

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, rt.pg.PoolHandle(), logger); err != nil {
			logger.Error("failed to run migrations", zap.Error(err))
			return err
		}
	}

	pool := rt.pg.PoolHandle()
	rdb := rt.redis.Client
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	hub := realtime.NewHub(logger, metrics)
	go hub.Run(ctx)
	worker.StartLiveFeed(dispatcher, hub)

	userRepo := repository.NewUserRepository(pool)
	complaintRepo := repository.NewComplaintRepository(pool)
	locationRepo := repository.NewLocationRepository(pool)

	activityService := service.NewActivityService(repository.NewActivityRepository(rdb), logger, metrics)
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:    userRepo,
		CaptchaRepo: repository.NewCaptchaRepository(rdb),
		Activity:    activityService,
	})
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: complaintRepo,
		CommentRepo:   repository.NewCommentRepository(pool),
		ReadStateRepo: repository.NewReadStateRepository(rdb),
		Terminals:     locationRepo,
		Activity:      activityService,
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger,
	})
	dashboardService := service.NewDashboardService(service.DashboardDependencies{
		ComplaintRepo: complaintRepo,
		Locations:     locationRepo,
		Logger:        logger,
	})
	locationService := service.NewLocationService(locationRepo, activityService)
	masterService := service.NewMasterDataService(repository.NewMasterDataRepository(pool), activityService)
	userService := service.NewUserService(cfg.Auth, userRepo, activityService)
	mailService := service.NewMailService(service.MailDependencies{
		MailRepo:           repository.NewMailRepository(pool),
		Users:              userRepo,
		Activity:           activityService,
		Dispatcher:         dispatcher,
		Logger:             logger,
		MaxAttachmentBytes: cfg.Mail.MaxAttachmentBytes,
	})
	settingsService := service.NewSettingsService(repository.NewSettingsRepository(rdb), activityService)

	var mailer service.Mailer
	if cfg.Mail.SMTPEnabled() {
		mailer = service.NewSMTPMailer(cfg.Mail)
	} else {
		logger.Info("SMTP_HOST not set; email notifications disabled")
	}
	notificationService := service.NewNotificationService(mailer, logger, metrics, cfg.Notification)
	worker.StartNotificationWorker(dispatcher, notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: bodyLimit(cfg.Mail.MaxAttachmentBytes),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:     cfg.App.RequestTimeout(),
		CORSOrigins: cfg.App.CORSOrigins,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": rt.pg,
			"redis":    rt.redis,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Complaints:     handlers.NewComplaintsHandler(complaintService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		Locations:      handlers.NewLocationsHandler(locationService),
		Master:         handlers.NewMasterDataHandler(masterService),
		Users:          handlers.NewUsersHandler(userService),
		Activity:       handlers.NewActivityHandler(activityService),
		Mail:           handlers.NewMailHandler(mailService),
		Settings:       handlers.NewSettingsHandler(settingsService),
		Live:           handlers.NewLiveHandler(hub),
		Metrics:        metrics,
		AuthMiddleware: authMiddleware,
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		logger.Error("fiber listen", zap.Error(err))
		return err
	case <-waitForShutdown(logger):
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	notificationService.Wait()
	return nil
}

// bodyLimit leaves room for base64-encoded mail attachments.
func bodyLimit(maxAttachment int64) int {
	limit := int(maxAttachment)*2 + 1024*1024
	if limit < minBodyLimit {
		return minBodyLimit
	}
	return limit
}

func waitForShutdown(logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))
		close(done)
	}()
	return done
}
