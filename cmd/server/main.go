package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	emailPkg "gameshelf/internal/adapters/email"
	web "gameshelf/internal/adapters/http"
	"gameshelf/internal/adapters/http/perf"
	"gameshelf/internal/adapters/storage"
	auditStore "gameshelf/internal/adapters/storage/audit"
	draftStore "gameshelf/internal/adapters/storage/draft"
	gameStore "gameshelf/internal/adapters/storage/game"
	sessionStore "gameshelf/internal/adapters/storage/gamesession"
	loanStore "gameshelf/internal/adapters/storage/loan"
	userStore "gameshelf/internal/adapters/storage/user"
	"gameshelf/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("GAMESHELF_DB", "gameshelf.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	// Run database migrations
	if err := storage.MigrateDB(db, dbPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	log.Println("Database initialized successfully!")

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	// Create store instances (using timed DB for query instrumentation)
	users := userStore.NewSQLiteStore(timedDB)
	games := gameStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		UserStore:    users,
		GameStore:    games,
		SessionStore: sessionStore.NewSQLiteStore(timedDB),
		LoanStore:    loanStore.NewSQLiteStore(timedDB),
		AuditStore:   auditStore.NewSQLiteStore(timedDB),
		DraftStore:   draftStore.NewSQLiteStore(timedDB),
	}

	generateID := func() string { return uuid.New().String() }

	// Seed default admin user if the user table is empty
	adminUsername := envOrDefault("GAMESHELF_ADMIN_USERNAME", "admin")
	adminEmail := envOrDefault("GAMESHELF_ADMIN_EMAIL", "admin@gameshelf.local")
	adminPassword := envOrDefault("GAMESHELF_ADMIN_PASSWORD", "change me now")
	seedDeps := orchestrators.RegisterUserDeps{
		UserStore:  users,
		GenerateID: generateID,
		Now:        time.Now,
	}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminUsername, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Seed a starter catalog for development only
	if os.Getenv("GAMESHELF_ENV") != "production" {
		seedGameDeps := orchestrators.SeedGamesDeps{
			GameStore:  games,
			GenerateID: generateID,
			Now:        time.Now,
		}
		if err := orchestrators.ExecuteSeedSampleGames(context.Background(), seedGameDeps); err != nil {
			log.Fatalf("failed to seed sample games: %v", err)
		}
	}

	// Configure email sender
	resendKey := os.Getenv("GAMESHELF_RESEND_API_KEY")
	emailFrom := envOrDefault("GAMESHELF_RESEND_FROM", "Gameshelf <noreply@gameshelf.local>")
	emailReply := envOrDefault("GAMESHELF_REPLY_TO", "library@gameshelf.local")
	var sender emailPkg.Sender
	if resendKey != "" {
		sender = emailPkg.NewResendSender(resendKey, emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if os.Getenv("GAMESHELF_ENV") == "production" {
			log.Println("WARNING: GAMESHELF_RESEND_API_KEY is not set, email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop, set GAMESHELF_RESEND_API_KEY for real delivery)")
		}
	}
	web.SetEmailSender(sender, emailFrom, emailReply)

	// Background job: remind borrowers holding overdue loans
	reminderDeps := orchestrators.OverdueReminderDeps{
		LoanStore: stores.LoanStore,
		UserStore: users,
		GameStore: games,
		Sender:    sender,
		From:      emailFrom,
		Now:       time.Now,
	}
	stopReminders := orchestrators.StartOverdueReminderScheduler(context.Background(), reminderDeps, orchestrators.DefaultOverdueReminderConfig())
	defer stopReminders()

	// Create HTTP handler with middleware (pass collector for timing + dashboard)
	mux := web.NewMux("static", stores, collector)

	// Start server
	addr := envOrDefault("GAMESHELF_ADDR", ":8080")
	log.Printf("Gameshelf %s starting on %s (env=%s, schema=%d)", version, addr, envOrDefault("GAMESHELF_ENV", "development"), storage.LatestSchemaVersion())

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
