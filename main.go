package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"chelmassage/config"
	"chelmassage/cron"
	"chelmassage/handlers"
	"chelmassage/middleware"
	"chelmassage/routes"
	"chelmassage/services/booking"
	"chelmassage/services/calendar"
	"chelmassage/services/document"
	"chelmassage/services/mail"
	"chelmassage/services/notification"
	"chelmassage/services/sheets"
	"chelmassage/services/storage"
	"chelmassage/services/tasks"
	"chelmassage/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var probes []utils.HealthProbe

	if sa, err := config.LoadServiceAccount(cfg.GoogleCredentialsFile); err != nil {
		logger.Warn("main: google service account key unreadable", zap.String("path", cfg.GoogleCredentialsFile), zap.Error(err))
	} else {
		logger.Info("main: using google service account; share the calendar and spreadsheet with it",
			zap.String("clientEmail", sa.ClientEmail), zap.String("project", sa.ProjectID))
	}

	// Calendar: the system of record. Missing credentials degrade to 503s instead of a crash.
	cal, calendarID, err := calendar.Resolve(ctx, cfg.CalendarID, func(ctx context.Context) (calendar.Service, error) {
		gcal, err := calendar.NewGoogleService(ctx)
		if err != nil {
			return nil, err
		}
		probes = append(probes, utils.HealthProbe{Name: "calendar", Check: gcal.Ping})
		return gcal, nil
	})
	if err != nil {
		logger.Error("main: calendar service unavailable; calendar endpoints will answer 503", zap.Error(err))
	}

	var sheetsSvc sheets.Service
	if cfg.SpreadsheetID != "" {
		s, err := sheets.NewGoogleService(ctx)
		if err != nil {
			logger.Warn("main: sheets service unavailable; client registry disabled", zap.Error(err))
		} else {
			sheetsSvc = s
		}
	}

	var archive storage.ArchiveService
	if cfg.IntakeArchiveBucket != "" {
		gcs, err := storage.NewGCSArchiveService(ctx, cfg.IntakeArchiveBucket, cfg.IntakeArchiveKey)
		if err != nil {
			logger.Warn("main: intake archive unavailable", zap.Error(err))
		} else {
			archive = gcs
			defer gcs.Close()
		}
	}

	notificationService, err := notification.NewDefaultNotificationService(
		newMailer(ctx, cfg, logger),
		sheetsSvc,
		archive,
		cfg.SpreadsheetID,
		cfg.AdminAddress(),
		cfg.PublicBaseURL,
		cfg.BusinessName,
		cfg.Location(),
		logger,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	dispatcher, worker := newDispatcher(ctx, cfg, notificationService, logger)

	var idempotency booking.IdempotencyStore
	if err := utils.InitIdempotencyCache(); err != nil {
		if !errors.Is(err, utils.ErrRedisNotConfigured) {
			logger.Warn("main: redis unavailable; idempotency keys kept in memory", zap.Error(err))
		}
		idempotency = booking.NewMemoryIdempotencyStore(cfg.IdempotencyTTL())
	} else {
		client := utils.GetIdempotencyClient()
		idempotency = booking.NewRedisIdempotencyStore(client, cfg.IdempotencyTTL())
		probes = append(probes, utils.RedisProbe("redis", client))
	}

	bookingService, err := booking.NewDefaultBookingService(cal, calendarID, dispatcher, idempotency, cfg.BookingPostVerify, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	utils.StartHealthMonitor(ctx, 30*time.Second, probes)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	bookingHandler := handlers.NewBookingHandler(bookingService, cfg.AvailableDaysDefault, logger)
	intakeHandler := handlers.NewIntakeHandler(document.NewPDFRenderer(logger), dispatcher, logger)

	handlerBundle := &handlers.HandlerBundle{
		GetAvailableDays: bookingHandler.GetAvailableDays,
		GetAvailability:  bookingHandler.GetAvailability,
		BookAppointment:  bookingHandler.BookAppointment,
		SubmitIntake:     intakeHandler.SubmitIntake,
		Pages:            handlers.NewPageHandler(cfg.TemplateDir),
		StaticDir:        cfg.StaticDir,
		Health:           handlers.Health,
	}
	routes.RegisterRoutes(router, handlerBundle)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: notification jobs abandoned", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// newMailer picks the transport named by MAIL_TRANSPORT.
func newMailer(ctx context.Context, cfg config.Config, logger *zap.Logger) mail.Mailer {
	if cfg.SenderEmail == "" {
		logger.Error("main: SENDER_EMAIL is not set; notification emails are disabled")
		return mail.Unavailable{}
	}
	if cfg.MailTransport == "gmail" {
		m, err := mail.NewGmailMailer(ctx, cfg.SenderEmail, logger)
		if err == nil {
			return m
		}
		logger.Warn("main: gmail transport unavailable; falling back to smtp", zap.Error(err))
	}
	return mail.NewSMTPMailer(cfg.SMTPHost, cfg.SenderEmail, cfg.SMTPPassword, cfg.SMTPSSLPort, cfg.SMTPStartTLSPort, logger)
}

// newDispatcher returns the asynq-backed dispatcher and its worker when
// NOTIFY_QUEUE=asynq and Redis is reachable, the in-process one otherwise.
func newDispatcher(ctx context.Context, cfg config.Config, svc notification.NotificationService, logger *zap.Logger) (notification.Dispatcher, *asynq.Server) {
	if cfg.NotifyQueue == "asynq" && cfg.RedisAddr != "" {
		worker, err := cron.InitNotificationWorker(ctx, svc)
		if err == nil {
			return tasks.NewAsynqDispatcher(cron.RedisConnOpt(), logger), worker
		}
		logger.Warn("main: asynq worker unavailable; using in-process dispatcher", zap.Error(err))
	}
	return notification.NewLocalDispatcher(svc, cfg.NotifyWorkers, cfg.NotifyBuffer, logger), nil
}
