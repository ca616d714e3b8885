package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"random_coffee_bot/internal/app"
	"random_coffee_bot/internal/domain/pairing"
	"random_coffee_bot/internal/infra/config"
	idb "random_coffee_bot/internal/infra/database"
	"random_coffee_bot/internal/infra/logger"
	"random_coffee_bot/internal/infra/scheduler"
	"random_coffee_bot/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get().WithField("component", "main")
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s, Admins: %d", cfg.LogLevel, cfg.Environment, len(cfg.AdminIDs))

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	if err := idb.EnsureSchema(db); err != nil {
		log.Fatalf("FATAL: Could not initialize database schema: %v", err)
	}
	log.Info("Database connection established and schema ensured.")

	// Initialize Repositories
	participantRepo := idb.NewPostgresParticipantRepository(db)
	reminderRepo := idb.NewPostgresReminderRepository(db)

	// Initialize Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := logger.Get().WithField("component", "telebot")
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.WithError(err).Error("Bot update handling failed")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Fatalf("FATAL: Could not create Telegram bot: %v", err)
	}
	client := telegram.NewTelebotAdapter(bot)

	// Initialize Services
	baseLogger := logger.Get().WithField("app", "random_coffee_bot")
	clock := app.NewSystemClock()
	engine := pairing.NewEngine(rand.New(rand.NewSource(time.Now().UnixNano())))

	roundService := app.NewRoundService(participantRepo, reminderRepo, engine, client, clock, cfg.FollowupDelay, baseLogger)
	reminderService := app.NewReminderService(reminderRepo, client, clock, baseLogger)
	adminService := app.NewAdminService(participantRepo, roundService, client, clock, cfg.AdminIDs, baseLogger)
	registrationService := app.NewRegistrationService(participantRepo, baseLogger)
	log.Info("Services initialized.")

	// Initialize Scheduler
	pairingScheduler := scheduler.NewPairingScheduler(
		roundService,
		reminderService,
		baseLogger,
		cfg.CronSpecPairing,
		cfg.CronSpecMidCycle,
		cfg.CronSpecReminderCheck,
	)
	if err := pairingScheduler.Start(); err != nil {
		log.Fatalf("FATAL: Could not start scheduler: %v", err)
	}

	// Register Handlers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handlers := telegram.NewHandlers(adminService, registrationService, participantRepo, baseLogger)
	handlers.Register(ctx, bot)
	log.Info("Bot handlers registered.")

	log.Info("Application setup complete. Bot and Scheduler are starting...")

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	log.Info("Shutting down application...")
	bot.Stop()
	pairingScheduler.Stop()
	log.Info("Application shut down gracefully.")
}
