package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DylanJC13/movil-2/internal/cache"
	"github.com/DylanJC13/movil-2/internal/config"
	"github.com/DylanJC13/movil-2/internal/db"
	"github.com/DylanJC13/movil-2/internal/events"
	"github.com/DylanJC13/movil-2/internal/events/rabbitmq"
	"github.com/DylanJC13/movil-2/internal/jobs"
	"github.com/DylanJC13/movil-2/internal/services"
	"github.com/DylanJC13/movil-2/internal/store"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()

	dbConn, err := db.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Migrate(dbConn, cfg.Database.ConnString(), cfg.App.Migrations); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	if *migrateOnlyFlag {
		log.Println("Migrations completed successfully")
		return
	}

	if *seedOnlyFlag || cfg.App.Seed {
		if err := db.Seed(dbConn); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		if *seedOnlyFlag {
			log.Println("Seeding completed successfully")
			return
		}
	}

	var pub events.Publisher = events.Nop{}
	if cfg.AMQP.URL != "" {
		conn, ch, err := rabbitmq.SetupConn(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Printf("Event publishing disabled: %v", err)
		} else {
			defer conn.Close()
			defer ch.Close()
			pub = rabbitmq.NewPublisher(ch, cfg.AMQP.Exchange)
			log.Printf("Publishing events to exchange %q", cfg.AMQP.Exchange)
		}
	}

	st := store.New(dbConn)
	invoiceCfg := services.InvoiceConfig{
		TaxRate:          cfg.Billing.TaxRate,
		LockTimeout:      cfg.Billing.LockTimeout,
		DefaultListLimit: cfg.Billing.DefaultListLimit,
		MaxListLimit:     cfg.Billing.MaxListLimit,
	}
	var invoices services.Invoices = services.NewInvoiceService(st, st, invoiceCfg, pub)

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Printf("Redis not reachable yet, reads fall back to the database: %v", err)
		}
		cancel()
		invoices = cache.NewInvoiceCache(invoices, rdb, cfg.Redis.TTL)
		log.Printf("Invoice cache enabled (ttl=%s)", cfg.Redis.TTL)
	}

	catalog := services.NewCatalogService(st)

	if spec := cfg.Jobs.RestockScanSchedule; spec != "" {
		c := cron.New()
		if _, err := jobs.Schedule(c, spec, jobs.NewRestockScanner(catalog, pub)); err != nil {
			log.Fatalf("Invalid RESTOCK_SCAN_SCHEDULE %q: %v", spec, err)
		}
		c.Start()
		defer c.Stop()
		log.Printf("Restock scanner scheduled (%s)", spec)
	}

	courses := services.NewCourseService(st)
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if n, err := courses.EnsureSeeded(seedCtx); err != nil {
		log.Printf("Course catalog seed failed: %v", err)
	} else if n > 0 {
		log.Printf("Seeded %d courses", n)
	}
	cancelSeed()

	appHandler := NewApp(Deps{
		Invoices:       invoices,
		Catalog:        catalog,
		Clients:        services.NewClientService(st),
		Courses:        courses,
		Announcements:  services.NewAnnouncementService(nil),
		Ping:           st.Ping,
		AllowedOrigins: cfg.App.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      withLogging(appHandler),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s (dev=%v)", cfg.Server.Port, cfg.App.Dev)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped gracefully")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging middleware. Every response carries an
// X-Request-ID, reusing the caller's when present.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", rid)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s rid=%s", r.Method, r.URL.Path, rec.status, time.Since(start), rid)
	})
}
