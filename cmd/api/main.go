package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-minimalapp/config"
	"go-minimalapp/pkg/logger"
	"go-minimalapp/pkg/security"

	"github.com/spf13/cobra"
)

var port string

var rootCmd = &cobra.Command{
	Use:   "minimalapp",
	Short: "Minimal demo web app with a contact form",
	RunE:  runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the registered routes",
	RunE:  runRoutes,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	rootCmd.AddCommand(serveCmd, routesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if port != "" {
		cfg.Port = port
	}

	logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	security.InitSecurityLogger(serviceName, cfg.Environment)
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Log.Info("Starting minimalapp", "port", cfg.Port, "env", cfg.Environment)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to start", "error", err)
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}
	if err := a.Close(shutdownCtx); err != nil {
		logger.Log.Warn("Cleanup failed", "error", err)
	}
	_ = security.DefaultLogger().Sync()

	logger.Log.Info("Server exiting")
	return nil
}

func runRoutes(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// routes only need the in-memory wiring
	cfg.RedisURL = ""
	cfg.OTLPEndpoint = ""
	cfg.TemplateReload = false

	a, err := buildApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	out := cmd.OutOrStdout()
	for _, route := range a.router.Routes() {
		fmt.Fprintf(out, "%-7s %s\n", route.Method, route.Path)
	}
	return nil
}
