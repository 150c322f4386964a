/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the front-desk engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load TOML config + environment
  2. Initialize SQLite activity ledger
  3. Build the PMS client
  4. Create the desk-session registry and API handler
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to TOML config file (optional; env can carry everything)
  -port    Overrides the configured HTTP port when > 0
  -db      Overrides the configured SQLite path
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close every desk session (stops their poll goroutines)
  4. Close the database
  5. Exit

EXAMPLES:
  # Run against a config file
  ./server -config=./frontdesk.toml

  # Run with an in-memory ledger on another port
  FRONTDESK_PMS_TOKEN=... FRONTDESK_PMS_BASE_URL=... ./server -db=":memory:" -port=3000

SEE ALSO:
  - config/config.go: Configuration precedence
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Ledger implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stayfront/frontdesk-engine/actor"
	"github.com/stayfront/frontdesk-engine/api"
	"github.com/stayfront/frontdesk-engine/calendar"
	"github.com/stayfront/frontdesk-engine/config"
	"github.com/stayfront/frontdesk-engine/desk"
	"github.com/stayfront/frontdesk-engine/pms"
	"github.com/stayfront/frontdesk-engine/store/sqlite"
)

type stdLogger struct{}

func (stdLogger) Infof(format string, args ...any)  { log.Printf("INFO  "+format, args...) }
func (stdLogger) Errorf(format string, args ...any) { log.Printf("ERROR "+format, args...) }

func main() {
	// Flags
	configPath := flag.String("config", "", "path to TOML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	// Initialize ledger store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Upstream PMS client
	client := pms.NewClient(cfg.PMS.BaseURL, cfg.PMS.Token, cfg.PMS.Timeout(), stdLogger{})

	// Desk sessions
	open := func(propertyID string, by actor.Actor, week calendar.Range) *desk.Session {
		return desk.NewSession(client, propertyID, by, week, desk.Options{
			RefreshInterval: cfg.Desk.RefreshInterval(),
			CascadeDelay:    cfg.Desk.CascadeDelay(),
			Log:             store,
			Logger:          stdLogger{},
		})
	}
	sessions := api.NewSessions(open, cfg.Desk.SessionIdle())
	defer sessions.CloseAll()

	// Router
	handler := api.NewHandler(sessions, store)
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Front-desk engine listening on http://localhost:%d", cfg.Server.Port)
		log.Printf("API available at http://localhost:%d/api", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
