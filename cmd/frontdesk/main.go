package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"frontdesk/internal/api"
	"frontdesk/internal/availability"
	"frontdesk/internal/cache"
	"frontdesk/internal/config"
	"frontdesk/internal/database"
	"frontdesk/internal/events"
	"frontdesk/internal/google"
	"frontdesk/internal/invoices"
	"frontdesk/internal/kitchen"
	"frontdesk/internal/metrics"
	"frontdesk/internal/rates"
	"frontdesk/internal/reservations"
	"frontdesk/internal/rooms"
	"frontdesk/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load(os.Getenv("FRONTDESK_CONFIG"))
	if err != nil {
		fallback := zerolog.New(os.Stderr).With().Timestamp().Logger()
		fallback.Fatal().Err(err).Msg("failed to load config")
	}

	logger := newLogger(cfg.Logging)
	if err = cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	loc := cfg.Location()

	db, err := database.NewDB(cfg.Database.Path, loc, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.CacheTTL() > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
	}
	availabilityCache := cache.New(rdb, cfg.CacheTTL(), &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus(&logger)
	if notifier, err := newKitchenNotifier(cfg.Kitchen); err != nil {
		logger.Fatal().Err(err).Msg("kitchen notifier error")
	} else if notifier != nil {
		retry := kitchen.DefaultRetryConfig()
		retry.MaxRetries = cfg.Kitchen.MaxRetries
		dispatcher := kitchen.NewDispatcher(notifier, cfg.Kitchen.RatePerSecond, cfg.Kitchen.Burst, retry, &logger)
		bus.Subscribe(events.InvoiceSaved, events.Async(dispatcher.Handler(), &logger))
		logger.Info().Str("channel", notifier.Name()).Msg("Kitchen orders enabled")
	}

	var sheets api.SheetsSync
	if cfg.Google.Enabled {
		values, err := google.NewValuesClient(ctx, cfg.Google.CredentialsFile, cfg.Google.SpreadsheetID)
		if err != nil {
			logger.Fatal().Err(err).Msg("google sheets client error")
		}
		sheets = google.NewSync(values, loc, &logger)
	}

	mappings := cfg.OTAMappings()
	deps := api.Deps{
		Availability: service.NewAvailabilityService(db, availability.NewEngine(loc, &logger), mappings, availabilityCache, &logger),
		Reservations: reservations.NewService(db, rooms.NewResolver(loc, &logger), bus, loc, &logger),
		Invoices:     invoices.NewService(db, bus, loc, &logger),
		Rates:        rates.NewClient(cfg.Rates.Endpoint, nil, &logger),
		Sheets:       sheets,
		Store:        db,
		Location:     loc,
		Logger:       &logger,
		Now:          time.Now,
	}
	server := api.NewHTTPServer(api.Options{
		APIKey:       cfg.Server.APIKey,
		MaxRangeDays: cfg.Server.MaxRangeDays,
		CalendarDays: cfg.Hotel.CalendarDays,
		HotelCode:    cfg.Rates.HotelCode,
	}, deps)

	go database.NewBackupService(db, cfg.Backup, &logger).Start(ctx)
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, availabilityCache, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	logger.Info().
		Str("hotel", cfg.Hotel.Name).
		Int("port", cfg.Server.Port).
		Int("mappings", len(mappings)).
		Bool("sheets", sheets != nil).
		Msg("Front desk started")
	if err := serve(ctx, cfg.Server.Port, server.Handler()); err != nil {
		logger.Error().Err(err).Msg("api server error")
	}
	logger.Info().Msg("Front desk stopped")
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Pretty {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}

// newKitchenNotifier returns nil when kitchen orders are disabled.
func newKitchenNotifier(cfg config.KitchenConfig) (kitchen.Notifier, error) {
	switch cfg.Channel {
	case "discord":
		return kitchen.NewDiscordNotifier(cfg.DiscordWebhook, cfg.DiscordMention, &http.Client{Timeout: 10 * time.Second}), nil
	case "telegram":
		bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			return nil, fmt.Errorf("telegram bot: %w", err)
		}
		return kitchen.NewTelegramNotifier(bot, cfg.TelegramChatID), nil
	default:
		return nil, nil
	}
}

func serve(ctx context.Context, port int, handler http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func startHealthServer(ctx context.Context, port int, db *database.DB, c *cache.Cache, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if err := c.Ping(ctxPing); err != nil {
			http.Error(w, "redis not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if err := serve(ctx, port, mux); err != nil {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	if err := serve(ctx, port, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
