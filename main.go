// main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"orderrelay/internal/admin"
	"orderrelay/internal/catalog"
	"orderrelay/internal/config"
	"orderrelay/internal/journal"
	"orderrelay/internal/logger"
	"orderrelay/internal/middleware"
	"orderrelay/internal/order"
	"orderrelay/internal/signer"
	"orderrelay/internal/upstream"
	"orderrelay/internal/users"
)

type App struct {
	addr          string
	handler       http.Handler
	connections   sync.WaitGroup
	totalRequests int64
}

func main() {
	// Step 1: configuration, then logging
	config.LoadEnv()
	cfg := config.FromEnv()

	if err := logger.Setup(logger.Config{Level: cfg.LogLevel, FilePath: cfg.LogFile}); err != nil {
		logger.LogFatal("Failed to initialize logger: %v", err)
	}
	cfg.LogStartup()

	// Step 2: backend client and domain services
	client := upstream.New(cfg.BackendURL, signer.New(cfg.SharedSecret), cfg.CallTimeout)

	var jr *journal.Journal
	if cfg.JournalDBPath != "" {
		var err error
		jr, err = journal.Open(cfg.JournalDBPath)
		if err != nil {
			// The journal is write-behind convenience, not correctness.
			logger.LogWarn("Order journal disabled: %v", err)
			jr = nil
		}
	}

	catalogHandler := catalog.NewHandler(catalog.NewService(client))
	adminHandler := admin.NewHandler(admin.NewCoordinator(client))
	usersHandler := users.NewHandler(users.NewService(client))
	orderHandler := order.NewHandler(order.NewGuard(client, jr))
	journalHandler := journal.NewHandler(jr)
	pingHandler := upstream.NewHandler(client)

	// Step 3: background journal pruning
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	go jr.PruneLoop(bgCtx, time.Hour, journal.DefaultRetention)

	// Step 4: run server
	app := &App{
		addr: cfg.ListenAddr(),
		handler: routes(cfg, catalogHandler, adminHandler, usersHandler,
			orderHandler, journalHandler, pingHandler),
	}
	app.Run()

	if err := jr.Close(); err != nil {
		logger.LogError("Closing journal failed: %v", err)
	}
}

func routes(cfg config.Config, catalogH *catalog.Handler, adminH *admin.Handler,
	usersH *users.Handler, orderH *order.Handler, journalH *journal.Handler,
	pingH *upstream.Handler) http.Handler {

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recover)
	r.Use(middleware.CORS(cfg.AllowedOrigin))

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(120, time.Minute))

		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			middleware.WriteJSON(w, http.StatusOK, struct {
				OK bool `json:"ok"`
			}{true})
		})
		r.Get("/ping-backend", pingH.Ping)

		r.Get("/categories", catalogH.Categories)

		r.Get("/checkAdmin", adminH.CheckAdmin)
		r.Get("/checkFirstAdmin", adminH.CheckFirstAdmin)
		r.Post("/registerFirstAdmin", adminH.RegisterFirstAdmin)
		r.Get("/admins", adminH.List)
		r.Post("/admins/add", adminH.Add)
		r.Post("/admins/remove", adminH.Remove)
		// Body-carrying spellings used by older clients.
		r.Post("/admins/is-admin", adminH.IsAdmin)
		r.Post("/admins/register", adminH.RegisterFirstAdmin)

		r.Get("/users", usersH.List)
		r.Get("/recordUser", usersH.Record)

		r.Post("/order", orderH.Submit)
		r.Get("/orders/recent", journalH.Recent)
	})

	return r
}

// Run starts the HTTP server and shuts it down gracefully on SIGINT/SIGTERM.
func (a *App) Run() {
	server := &http.Server{
		Addr:         a.addr,
		Handler:      a.trackConnections(a.handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.LogInfo("Starting server on %s", a.addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.LogFatal("Server failed: %v", err)
		}
	}()

	<-stop
	logger.LogInfo("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.LogError("Server shutdown error: %v", err)
	}

	a.connections.Wait()
	logger.LogInfo("Server shut down gracefully. Total requests handled: %d",
		atomic.LoadInt64(&a.totalRequests))
}

// trackConnections counts in-flight requests so shutdown can wait for them.
func (a *App) trackConnections(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.connections.Add(1)
		atomic.AddInt64(&a.totalRequests, 1)
		defer a.connections.Done()

		h.ServeHTTP(w, r)
	})
}
