package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/qoldai/helpdesk/internal/ai"
	apihttp "github.com/qoldai/helpdesk/internal/api/http"
	"github.com/qoldai/helpdesk/internal/auth"
	"github.com/qoldai/helpdesk/internal/channel"
	"github.com/qoldai/helpdesk/internal/config"
	"github.com/qoldai/helpdesk/internal/events"
	"github.com/qoldai/helpdesk/internal/faq"
	"github.com/qoldai/helpdesk/internal/notify"
	"github.com/qoldai/helpdesk/internal/observability"
	"github.com/qoldai/helpdesk/internal/persistence"
	"github.com/qoldai/helpdesk/internal/repository"
	"github.com/qoldai/helpdesk/internal/service"
	"github.com/qoldai/helpdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := observability.NewLogger(cfg.App.Env, cfg.Logger.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := persistence.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal("postgres unavailable", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, "migrations", logger); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	rdb, err := persistence.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal("redis unavailable", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	metrics := observability.NewMetrics()
	dispatcher := events.NewDispatcher(logger)

	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewTicketMessageRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	callLogRepo := repository.NewCallLogRepository(pool)

	aiClient := ai.NewOpenAI(ai.OpenAIOptions{
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout(),
	}, logger)

	intakeService := service.NewIntakeService(service.IntakeDependencies{
		Tickets:     ticketRepo,
		Messages:    messageRepo,
		Users:       userRepo,
		Departments: departmentRepo,
		Classifier:  aiClient,
		FAQ:         faq.NewMatcher(faq.DefaultEntries()),
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	}, cfg.Intake)

	messageService := service.NewMessageService(ticketRepo, messageRepo, dispatcher, logger)
	ticketService := service.NewTicketService(ticketRepo, userRepo, dispatcher, logger)
	assistService := service.NewAssistService(ticketRepo, messageRepo, aiClient, aiClient, metrics, logger)
	statsService := service.NewStatsService(ticketRepo)
	telephonyService := service.NewTelephonyService(callLogRepo, userRepo, ticketRepo, intakeService, dispatcher, logger)

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.AccessTokenTTLMinutes)*time.Minute)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	authService := service.NewAuthService(userRepo, tokens, hasher, logger)

	var sink notify.Sink
	if cfg.Notification.ResendAPIKey != "" {
		sink = notify.NewResendSink(cfg.Notification.ResendAPIKey, cfg.Notification.EmailFrom, logger)
	} else {
		sink = notify.NewLogSink(logger)
	}
	notify.NewNotifier(userRepo, sink, cfg.Notification.WebURL, logger).Register(dispatcher)

	mailFeed := channel.NewMemoryFeed()
	emailChannel := channel.NewEmailChannel(channel.EmailChannelOptions{
		Feed:     mailFeed,
		Dedup:    channel.NewRedisDedup(rdb),
		DedupTTL: cfg.Mail.DedupTTL(),
		Users:    userRepo,
		Tickets:  ticketRepo,
		Intake:   intakeService,
		Messages: messageService,
		Sink:     sink,
		Logger:   logger,
	})
	mailPoller := worker.NewMailPoller(emailChannel, cfg.Mail.PollInterval(), cfg.Mail.FetchTimeout(), metrics, logger)
	go mailPoller.Run(ctx)

	if _, err := intakeService.BotUserID(ctx); err != nil {
		logger.Fatal("bot identity unavailable", zap.Error(err))
	}

	app := apihttp.NewApp(apihttp.RouterDependencies{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics,
		Tokens:    tokens,
		Health:    apihttp.NewHealthHandler(pool, rdb, metrics, cfg.App.Version),
		Auth:      apihttp.NewAuthHandler(authService),
		Tickets:   apihttp.NewTicketsHandler(intakeService, ticketService, messageService, departmentRepo),
		Operator:  apihttp.NewOperatorHandler(ticketService, assistService, statsService),
		Telephony: apihttp.NewTelephonyHandler(telephonyService, cfg.Telephony.APIKey),
		Mail:      apihttp.NewMailHandler(mailPoller, mailFeed),
	})

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown incomplete", zap.Error(err))
	}
}
