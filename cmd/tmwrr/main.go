package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	dotenv "github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/ghost"
	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/notify"
	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/repository"
	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/source"
	service "github.com/BigBang1112/tmwrr-sub000/internal/app"
	"github.com/BigBang1112/tmwrr-sub000/internal/config"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
	"github.com/BigBang1112/tmwrr-sub000/internal/schedule"
	"github.com/BigBang1112/tmwrr-sub000/pkg/logger"
	"github.com/BigBang1112/tmwrr-sub000/pkg/metrics"
	"github.com/BigBang1112/tmwrr-sub000/pkg/retry"
)

// Operational HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := dotenv.Load(); err != nil {
		// A missing .env is normal outside local development.
		os.Stderr.WriteString("no .env loaded: " + err.Error() + "\n")
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := repository.OpenSQLite(cfg.DatabasePath, cfg.MigrationsDir)
	if err != nil {
		log.Error(ctx, "failed to open database", logger.Error(err))
		return
	}
	defer store.Close()

	src := source.NewHTTPClient(cfg.SourceURL,
		source.WithTimeout(time.Duration(cfg.SourceTimeoutSeconds)*time.Second),
	)

	var notifier notify.Notifier = notify.Nop{}
	if cfg.WebhookURL != "" {
		notifier = notify.NewWebhook(cfg.WebhookURL)
	}

	opts := []service.Option{
		service.WithLogger(log.Named("orchestrator")),
		service.WithNotifier(notifier),
		service.WithStaleThreshold(time.Duration(cfg.StaleThresholdHours) * time.Hour),
		service.WithRetryPolicy(retry.NewPolicy(
			retry.WithInterval(time.Duration(cfg.RetryDelaySeconds)*time.Second),
			retry.WithAttemptTimeout(time.Duration(cfg.RetryTimeoutSeconds)*time.Second),
			retry.WithJitter(cfg.RetryJitter),
		)),
	}
	if cfg.GhostsEnabled {
		ghostURL := cfg.GhostsURL
		if ghostURL == "" {
			ghostURL = cfg.SourceURL
		}
		opts = append(opts, service.WithGhostDownloader(
			ghost.NewHTTPDownloader(ghostURL, cfg.GhostsDir, ghost.WithRate(cfg.GhostsPerSecond)),
		))
	}
	svc := service.New(src, store, store, opts...)

	loc, err := time.LoadLocation(cfg.CheckTimezone)
	if err != nil {
		log.Warn(ctx, "invalid check_timezone; falling back to UTC",
			logger.String("check_timezone", cfg.CheckTimezone), logger.Error(err))
		loc = time.UTC
	}
	planner := schedule.NewPlanner(
		schedule.WithCheckTime(cfg.CheckHour, cfg.CheckMinute),
		schedule.WithLocation(loc),
		schedule.WithFallbackDelay(time.Duration(cfg.FallbackDelayMinutes)*time.Minute),
	)
	loop, err := schedule.NewLoop(svc, planner,
		schedule.WithInitialRound(scores.Round(cfg.InitialRound)),
	)
	if err != nil {
		log.Error(ctx, "failed to create schedule loop", logger.Error(err))
		return
	}
	if err := loop.Start(ctx); err != nil {
		log.Error(ctx, "failed to start schedule loop", logger.Error(err))
		return
	}

	// Operational surface: health and metrics only; the serving API lives
	// in a separate deployment.
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              cfg.OpsAddr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		log.Info(ctx, "starting ops HTTP server", logger.String("addr", cfg.OpsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "ops HTTP server failed", logger.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn(shutdownCtx, "ops HTTP server shutdown failed", logger.Error(err))
	}
	if err := loop.Stop(); err != nil {
		log.Warn(shutdownCtx, "schedule loop shutdown failed", logger.Error(err))
	}
}
