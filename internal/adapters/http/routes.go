package web

import "net/http"

// registerRoutes wires every handler onto the mux. Auth enforcement happens
// inside the handlers so each one can pick redirect-to-login or a JSON 401.
func registerRoutes(mux *http.ServeMux) {
	// Entry points
	mux.HandleFunc("/{$}", handleRoot)
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/logout", handleLogout)
	mux.HandleFunc("/dashboard", handleDashboard)

	// Catalog
	mux.HandleFunc("/games", handleGames)
	mux.HandleFunc("/games/new", handleNewGameForm)
	mux.HandleFunc("GET /api/games/{id}", handleGetGameDetail)

	// Game sessions
	mux.HandleFunc("/game-sessions", handleSessions)
	mux.HandleFunc("/game-sessions/new", handleNewSessionForm)
	mux.HandleFunc("/game-sessions/{id}/edit", handleEditSession)
	mux.HandleFunc("GET /game-sessions/api/game-info/{gameId}", handleSessionGameInfo)

	// Loans
	mux.HandleFunc("/loans", handleLoans)
	mux.HandleFunc("/loans/new", handleNewLoanForm)
	mux.HandleFunc("POST /loans/{id}/return", handleReturnLoan)
	mux.HandleFunc("GET /loans/api/game-info/{gameId}", handleLoanGameInfo)

	// Users
	mux.HandleFunc("/users", handleUsers)
	mux.HandleFunc("GET /api/users/check-username", handleCheckUsername)
	mux.HandleFunc("GET /api/users/check-email", handleCheckEmail)

	// New-game form draft auto-save
	mux.HandleFunc("/api/drafts/game", handleGameDraft)

	// Admin
	mux.HandleFunc("/audit", handleAuditTrail)
}
