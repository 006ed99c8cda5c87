package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"notes-api/internal/config"
	"notes-api/internal/logger"
	"notes-api/internal/server"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "notes-server",
	Short: "Notes REST API server",
	Long: `notes-server обслуживает REST API заметок (/notes) и служебный gRPC порт
с health и reflection. Хранилище выбирается настройкой storage.driver.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "config.yml", "path to config file")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	appConfig, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("error initializing config: %w", err)
	}

	log, err := logger.New(appConfig.Logger.Level, appConfig.Logger.Format, os.Stdout)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(appConfig, log)
	if err != nil {
		return err
	}

	if err := srv.Initialize(ctx); err != nil {
		return err
	}

	errChan := srv.Start()
	log.Info("notes service started")

	// Ожидание сигнала или ошибки
	var serveErr error
	select {
	case serveErr = <-errChan:
		log.Error("server error", "error", serveErr)
	case <-ctx.Done():
		log.Info("received shutdown signal")
	}

	if err := srv.Shutdown(); err != nil {
		log.Error("shutdown error", "error", err)
		if serveErr == nil {
			serveErr = err
		}
	}

	log.Info("notes service stopped")
	return serveErr
}
