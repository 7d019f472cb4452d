package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/taskademic/taskademic/internal/ai"
	"github.com/taskademic/taskademic/internal/config"
	"github.com/taskademic/taskademic/internal/controlplane"
	"github.com/taskademic/taskademic/internal/moscow"
	"github.com/taskademic/taskademic/internal/planner"
	"github.com/taskademic/taskademic/internal/store"
)

var (
	listenAddr string
	dbPath     string
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Start the TaskAdemic daemon",
	Long:  `Starts the TaskAdemic daemon which provides the HTTP API for task analysis and scheduling.`,
	RunE:  runDaemon,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check daemon health",
	RunE:  runStatus,
}

func init() {
	daemonCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address for the API server (overrides config)")
	daemonCmd.Flags().StringVar(&dbPath, "db", "", "Path to SQLite database (overrides config)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if listenAddr == "" {
		listenAddr = cfg.Server.ListenAddr
	}
	if dbPath == "" {
		dbPath = cfg.DatabasePath()
	}

	if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
		return err
	}

	log.Println("Starting TaskAdemic daemon...")

	s, err := store.New(dbPath)
	if err != nil {
		return err
	}

	// Task mutations evict the owning user's cached analysis.
	cache := moscow.NewCache(cfg.Analysis.CacheTTL())
	s.SetInvalidator(cache)

	aiClient := ai.New(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model)
	if cfg.AI.APIKey == "" {
		log.Println("No AI API key configured, schedules will use fallback packing")
	}

	generator := planner.NewGenerator(s, cache, aiClient, cfg.Scheduler.ShouldTaskLimit, cfg.Scheduler.BufferMinutes)
	service := controlplane.NewService(s, generator)
	server := controlplane.NewServer(service, s, listenAddr, cfg.User.ID)

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		err := server.Start()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-serverErr:
		if err != nil {
			log.Printf("Server error: %v", err)
			s.Close()
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Println("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Closing database connection...")
	if err := s.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	health, err := CheckHealth()
	if err != nil {
		if health != nil {
			fmt.Printf("Daemon unhealthy: db=%s\n", health.DB)
		}
		return err
	}

	fmt.Printf("Daemon OK (version %s, db %s, time %s)\n", health.Version, health.DB, health.Time)
	return nil
}
