package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/orchestrator/internal/core/config"
	"github.com/vietddude/orchestrator/internal/supervise"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "orchestrator",
	Short: "Wallet analytics orchestrator",
	Long:  `Orchestrator starts the wallet analytics stack (backend API and frontend proxy), keeps it supervised, and collects bulk analytics datasets from it.`,
	Run:   runUp,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

func loadConfig() *config.AppConfig {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})

	return cfg
}

func runUp(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	if len(cfg.Services) == 0 {
		slog.Error("No services configured")
		os.Exit(1)
	}

	specs := make([]supervise.Spec, 0, len(cfg.Services))
	for _, svc := range cfg.Services {
		specs = append(specs, supervise.Spec{
			Name:    svc.Name,
			Command: svc.Command,
			Dir:     svc.Dir,
			Endpoint: supervise.Endpoint{
				Host:       svc.Host,
				Port:       svc.Port,
				HealthPath: svc.HealthPath,
				MaxWait:    svc.MaxWait,
			},
		})
	}

	sup := supervise.New(specs)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sup.Start(ctx); err != nil {
		slog.Error("Failed to start system", "error", err)
		os.Exit(1)
	}

	verifyProxy(cfg)

	srv := supervise.NewServer(sup, cfg.Server.Port)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("Status server failed", "error", err)
		}
	}()

	slog.Info("System started", "services", len(cfg.Services), "status_port", cfg.Server.Port)
	slog.Info("Press Ctrl+C to stop the system")

	<-ctx.Done()
	slog.Info("Received signal, shutting down...")

	sup.Teardown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Warn("Error stopping status server", "error", err)
	}
}

// verifyProxy checks that the backend API answers through the last
// service's port (the frontend proxy). Failure is reported, not fatal:
// the stack is running either way.
func verifyProxy(cfg *config.AppConfig) {
	if len(cfg.Services) < 2 {
		return
	}

	front := cfg.Services[len(cfg.Services)-1]
	url := supervise.Endpoint{Host: front.Host, Port: front.Port, HealthPath: "/api/analytics/health"}.URL()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		slog.Warn("Frontend proxy check failed", "url", url, "error", err)
		return
	}
	_ = resp.Body.Close()
	slog.Info("Frontend proxy is forwarding API requests", "url", url, "status", resp.StatusCode)
}
