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

	"github.com/vrsandeep/casetrack-go/internal/api"
	"github.com/vrsandeep/casetrack-go/internal/core"
	"github.com/vrsandeep/casetrack-go/internal/importer"
	"github.com/vrsandeep/casetrack-go/internal/notify"
	"github.com/vrsandeep/casetrack-go/internal/research"
	"github.com/vrsandeep/casetrack-go/internal/research/providers"
	"github.com/vrsandeep/casetrack-go/internal/research/providers/mockcourt"
	"github.com/vrsandeep/casetrack-go/internal/research/providers/serper"
	"github.com/vrsandeep/casetrack-go/internal/scheduler"
	"github.com/vrsandeep/casetrack-go/internal/store"
	"github.com/vrsandeep/casetrack-go/internal/util"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize the core application components
	app, err := core.New()
	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}
	defer app.Close()

	// Register all available research providers here.
	providers.Register(serper.New(app.Config.Research.SerperAPIKey))
	providers.Register(mockcourt.New())

	// Email alerts; a partially configured mailer drops alerts with a log
	// line instead of failing jobs.
	mailer := notify.NewMailer(app.Config.Email)
	if !mailer.Configured() {
		log.Println("Email alerts disabled: SMTP settings incomplete.")
	}

	// Start the research worker pool
	researchSvc := research.NewService(store.New(app.DB), app.Config, app.WsHub, mailer)
	researchSvc.Start()
	defer researchSvc.Stop()

	// Start the background scheduler with the periodic case sweep
	schedSvc := scheduler.New(researchSvc, app.Config.Scheduler.CheckIntervalHours)
	schedSvc.Start()
	defer schedSvc.Stop()

	// Watch the import drop directory when one is configured
	if watchPath := app.Config.Import.WatchPath; watchPath != "" {
		if err := util.ValidateDropDir(watchPath); err != nil {
			log.Printf("Warning: import watch path unusable: %v", err)
		} else {
			watcher := importer.NewWatcher(importer.New(store.New(app.DB)), watchPath)
			if err := watcher.Start(); err != nil {
				log.Printf("Warning: could not start import watcher: %v", err)
			} else {
				defer watcher.Stop()
			}
		}
	}

	// Setup the API server
	server := api.NewServer(app, researchSvc, schedSvc)
	addr := fmt.Sprintf(":%d", app.Config.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}
	// --- Graceful Shutdown ---
	// Start the server in a goroutine so it doesn't block.
	go func() {
		log.Printf("Starting web server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %v", err)
		}
	}()

	// Wait for an interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a context with a timeout to allow existing connections to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Attempt a graceful shutdown.
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
