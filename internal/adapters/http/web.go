package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"gameshelf/internal/adapters/email"
	"gameshelf/internal/adapters/http/middleware"
	"gameshelf/internal/adapters/http/perf"
	auditStore "gameshelf/internal/adapters/storage/audit"
	draftStore "gameshelf/internal/adapters/storage/draft"
	gameStore "gameshelf/internal/adapters/storage/game"
	sessionStore "gameshelf/internal/adapters/storage/gamesession"
	loanStore "gameshelf/internal/adapters/storage/loan"
	userStore "gameshelf/internal/adapters/storage/user"
)

// Stores holds all storage dependencies.
type Stores struct {
	UserStore    userStore.Store
	GameStore    gameStore.Store
	SessionStore sessionStore.Store
	LoanStore    loanStore.Store
	AuditStore   auditStore.Store
	DraftStore   draftStore.Store
}

// loadCSRFKey reads the CSRF secret from GAMESHELF_CSRF_KEY (hex-encoded, 32 bytes).
// In production the key MUST be set. In development a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("GAMESHELF_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("GAMESHELF_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("GAMESHELF_ENV") == "production" {
		log.Fatal("GAMESHELF_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set GAMESHELF_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var emailReplyTo string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, replyTo string) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("GAMESHELF_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
