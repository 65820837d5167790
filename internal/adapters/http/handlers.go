package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"gameshelf/internal/adapters/email"
	"gameshelf/internal/adapters/http/middleware"
	"gameshelf/internal/application/listutil"
	"gameshelf/internal/application/orchestrators"
	"gameshelf/internal/application/projections"
	auditDomain "gameshelf/internal/domain/audit"
	gameDomain "gameshelf/internal/domain/game"
	"gameshelf/internal/domain/timerange"
	userDomain "gameshelf/internal/domain/user"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

const templatesDir = "internal/adapters/http/templates"

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	role := ""
	username := ""
	if ok {
		role = sess.Role
		username = sess.Username
	}

	funcMap := template.FuncMap{
		"currentRole":     func() string { return role },
		"currentUsername": func() string { return username },
		"isLoggedIn":      func() bool { return role != "" },
		"isAdmin":         func() bool { return role == userDomain.RoleAdmin },
		"canManage": func() bool {
			return role == userDomain.RoleAdmin || role == userDomain.RoleExtendedUser
		},
		"csrfToken": func() string { return csrf.Token(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// recordSecurityEvent writes a best-effort audit entry for login/logout flows.
func recordSecurityEvent(r *http.Request, action auditDomain.Action, actorID, actorName, actorRole, description string, severity auditDomain.Severity) {
	if stores == nil || stores.AuditStore == nil {
		return
	}
	event := auditDomain.NewEvent(actorID, actorName, actorRole, auditDomain.CategorySecurity, action).
		WithDescription(description).
		WithSeverity(severity).
		WithRequest(r.RemoteAddr, r.UserAgent())
	if err := stores.AuditStore.Save(r.Context(), event); err != nil {
		slog.Warn("audit_event", "error", err.Error(), "action", string(action))
	}
}

// handleRoot redirects the bare domain to the dashboard.
func handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleLogin handles GET (form) and POST (authenticate) for /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		// If already logged in, redirect to dashboard
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.LoginInput{
			Username: r.FormValue("Username"),
			Password: r.FormValue("Password"),
		}

		deps := orchestrators.LoginDeps{
			UserStore: stores.UserStore,
		}

		result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
		if err != nil {
			recordSecurityEvent(r, auditDomain.ActionLogin, "", input.Username, "",
				"Failed login attempt", auditDomain.SeverityWarning)
			renderTemplate(w, r, "login.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			})
			return
		}

		token, err := sessions.Create(result.UserID, result.Username, result.Role)
		if err != nil {
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}

		middleware.SetSessionCookie(w, token)
		recordSecurityEvent(r, auditDomain.ActionLogin, result.UserID, result.Username, result.Role,
			"Logged in", auditDomain.SeverityInfo)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		recordSecurityEvent(r, auditDomain.ActionLogout, sess.UserID, sess.Username, sess.Role,
			"Logged out", auditDomain.SeverityInfo)
	}
	cookie, err := r.Cookie("gameshelf_session")
	if err == nil {
		sessions.Delete(cookie.Value)
	}

	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleDashboard handles GET /dashboard
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	ctx := r.Context()

	games, err := stores.GameStore.List(ctx)
	if err != nil {
		internalError(w, err)
		return
	}
	activeLoans, err := stores.LoanStore.ListActive(ctx)
	if err != nil {
		internalError(w, err)
		return
	}
	sessionRows, err := projections.QueryGetSessionList(ctx, projections.GetSessionListDeps{
		SessionStore: stores.SessionStore,
		UserStore:    stores.UserStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	available := 0
	for _, g := range games {
		if g.Available {
			available++
		}
	}
	overdue := 0
	now := timeNow()
	for _, l := range activeLoans {
		if l.IsOverdue(now) {
			overdue++
		}
	}

	data := map[string]any{
		"Username":       sess.Username,
		"TotalGames":     len(games),
		"AvailableGames": available,
		"ActiveLoans":    len(activeLoans),
		"OverdueLoans":   overdue,
		"Sessions":       sessionRows,
	}
	if isHTMLRequest(r) {
		renderTemplate(w, r, "dashboard.html", data)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// filterGames applies free-text search on the name and the category filter.
func filterGames(games []gameDomain.Game, fp listutil.FilterParams) []gameDomain.Game {
	search := strings.ToLower(strings.TrimSpace(fp.Search))
	category := fp.Filters["category"]
	if search == "" && category == "" {
		return games
	}
	out := games[:0:0]
	for _, g := range games {
		if search != "" && !strings.Contains(strings.ToLower(g.Name), search) {
			continue
		}
		if category != "" && !strings.EqualFold(g.Category, category) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// sortGames orders the list by the requested column, name ascending by default.
func sortGames(games []gameDomain.Game, sp listutil.SortParams) {
	less := func(a, b gameDomain.Game) bool {
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	}
	if sp.Sort == "category" {
		less = func(a, b gameDomain.Game) bool {
			return strings.ToLower(a.Category) < strings.ToLower(b.Category)
		}
	}
	sort.SliceStable(games, func(i, j int) bool {
		if sp.Dir == "desc" {
			return less(games[j], games[i])
		}
		return less(games[i], games[j])
	})
}

// handleGames handles GET (list) and POST (create) for /games
func handleGames(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	isHTML := isHTMLRequest(r)

	if r.Method == "GET" {
		if _, ok := middleware.GetSessionFromContext(ctx); !ok {
			if isHTML {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
			} else {
				http.Error(w, "not authenticated", http.StatusUnauthorized)
			}
			return
		}

		var games []gameDomain.Game
		var err error
		if r.URL.Query().Get("available") == "true" {
			games, err = stores.GameStore.ListAvailable(ctx)
		} else {
			games, err = stores.GameStore.List(ctx)
		}
		if err != nil {
			internalError(w, err)
			return
		}

		params := listutil.ParseListParams(r.URL.Query(), []string{"name", "category"}, []string{"category"})
		games = filterGames(games, params.FilterParams)
		sortGames(games, params.SortParams)

		if isHTML {
			pageInfo := listutil.NewPageInfo(params.Page, params.PerPage, len(games))
			start := pageInfo.Offset()
			end := start + pageInfo.PerPage
			if end > len(games) {
				end = len(games)
			}
			renderTemplate(w, r, "get_game_list.html", map[string]any{
				"Games":    games[start:end],
				"PageInfo": pageInfo,
				"Search":   params.Search,
			})
			return
		}
		writeJSON(w, http.StatusOK, games)
		return
	}

	if r.Method == "POST" {
		sess, ok := middleware.GetSessionFromContext(ctx)
		if !ok {
			http.Error(w, "not authenticated", http.StatusUnauthorized)
			return
		}
		if !middleware.CanManageLibrary(ctx) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		input := orchestrators.CreateGameInput{}

		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			input.Name = r.FormValue("Name")
			input.Description = r.FormValue("Description")
			input.Category = r.FormValue("Category")
			input.MinPlayers, _ = strconv.Atoi(r.FormValue("MinPlayers"))
			input.MaxPlayers, _ = strconv.Atoi(r.FormValue("MaxPlayers"))
			input.DurationMinutes, _ = strconv.Atoi(r.FormValue("DurationMinutes"))
			input.State = r.FormValue("State")
		} else {
			if err := strictDecode(r, &input); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
		}
		input.ActorID = sess.UserID

		deps := orchestrators.CreateGameDeps{
			GameStore:  stores.GameStore,
			DraftStore: stores.DraftStore,
			GenerateID: generateID,
			Now:        timeNow,
		}
		g, err := orchestrators.ExecuteCreateGame(ctx, input, deps)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if isHTML {
			http.Redirect(w, r, "/games", http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusCreated, g)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleNewGameForm handles GET /games/new
func handleNewGameForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if !middleware.CanManageLibrary(r.Context()) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	// Restore any saved draft so the form can pre-fill itself.
	draftPayload := ""
	if d, err := stores.DraftStore.Get(r.Context(), sess.UserID, orchestrators.GameDraftForm); err == nil {
		draftPayload = d.Payload
	}

	renderTemplate(w, r, "form_new_game.html", map[string]any{
		"CSRFToken": csrf.Token(r),
		"Draft":     draftPayload,
	})
}

// sessionInputFromForm reads the shared session form fields.
func sessionInputFromForm(r *http.Request, creatorID string) orchestrators.SessionInput {
	maxPlayers, _ := strconv.Atoi(r.FormValue("MaxPlayers"))
	return orchestrators.SessionInput{
		CreatorID:             creatorID,
		GameID:                r.FormValue("GameID"),
		CustomGameName:        r.FormValue("CustomGameName"),
		CustomGameDescription: r.FormValue("CustomGameDescription"),
		Title:                 r.FormValue("Title"),
		StartDate:             r.FormValue("StartDate"),
		StartTime:             r.FormValue("StartTime"),
		EndDate:               r.FormValue("EndDate"),
		EndTime:               r.FormValue("EndTime"),
		MaxPlayers:            maxPlayers,
		Description:           r.FormValue("Description"),
	}
}

// sessionFormData assembles the template payload for the session form. The
// end-time help text and requiredness are projected server-side from the
// submitted range so the form renders correctly without JavaScript.
func sessionFormData(r *http.Request, input orchestrators.SessionInput, editing bool, sessionID string) map[string]any {
	rng := timerange.Range{
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
	}
	helpText, helpAlarm := timerange.HelpText(rng)
	return map[string]any{
		"CSRFToken":       csrf.Token(r),
		"Input":           input,
		"Editing":         editing,
		"SessionID":       sessionID,
		"EndTimeRequired": timerange.EndTimeRequired(rng),
		"HelpText":        helpText,
		"HelpAlarm":       helpAlarm,
	}
}

// handleSessions handles GET (list) and POST (create) for /game-sessions
func handleSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	isHTML := isHTMLRequest(r)

	if r.Method == "GET" {
		if _, ok := middleware.GetSessionFromContext(ctx); !ok {
			if isHTML {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
			} else {
				http.Error(w, "not authenticated", http.StatusUnauthorized)
			}
			return
		}
		rows, err := projections.QueryGetSessionList(ctx, projections.GetSessionListDeps{
			SessionStore: stores.SessionStore,
			UserStore:    stores.UserStore,
		})
		if err != nil {
			internalError(w, err)
			return
		}
		if isHTML {
			renderTemplate(w, r, "get_session_list.html", map[string]any{
				"Sessions": rows,
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if rows == nil {
			w.Write([]byte("[]"))
			return
		}
		json.NewEncoder(w).Encode(rows)
		return
	}

	if r.Method == "POST" {
		sess, ok := middleware.GetSessionFromContext(ctx)
		if !ok {
			http.Error(w, "not authenticated", http.StatusUnauthorized)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input := sessionInputFromForm(r, sess.UserID)

		deps := orchestrators.SessionDeps{
			SessionStore: stores.SessionStore,
			AuditStore:   stores.AuditStore,
			GenerateID:   generateID,
			Now:          timeNow,
		}
		created, err := orchestrators.ExecuteCreateGameSession(ctx, input, deps)
		if err != nil {
			respondSessionError(w, r, err, input, false, "")
			return
		}

		if isHTML {
			http.Redirect(w, r, "/game-sessions", http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusCreated, created)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// respondSessionError renders a failed session submit: the form again with
// per-field states for browsers, a structured 400 for JSON clients.
func respondSessionError(w http.ResponseWriter, r *http.Request, err error, input orchestrators.SessionInput, editing bool, sessionID string) {
	var verr *orchestrators.ValidationError
	if errors.As(err, &verr) {
		if isHTMLRequest(r) {
			data := sessionFormData(r, input, editing, sessionID)
			data["Fields"] = verr.Fields
			data["Error"] = verr.Error()
			renderTemplate(w, r, "form_game_session.html", data)
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  verr.Error(),
			"fields": verr.Fields,
		})
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// handleNewSessionForm handles GET /game-sessions/new
func handleNewSessionForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	data := sessionFormData(r, orchestrators.SessionInput{CreatorID: sess.UserID}, false, "")

	games, err := stores.GameStore.ListAvailable(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	data["Games"] = games
	renderTemplate(w, r, "form_game_session.html", data)
}

// handleEditSession handles GET (form) and POST (update) for /game-sessions/{id}/edit
func handleEditSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	existing, err := stores.SessionStore.GetByID(ctx, id)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	// Only the creator or a manager may edit
	if existing.CreatorID != sess.UserID && !middleware.CanManageLibrary(ctx) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if r.Method == "GET" {
		input := orchestrators.SessionInput{
			CreatorID:             existing.CreatorID,
			GameID:                existing.GameID,
			CustomGameName:        existing.CustomGameName,
			CustomGameDescription: existing.CustomGameDescription,
			Title:                 existing.Title,
			StartDate:             existing.StartDate,
			StartTime:             existing.StartTime,
			EndDate:               existing.EndDate,
			EndTime:               existing.EndTime,
			MaxPlayers:            existing.MaxPlayers,
			Description:           existing.Description,
		}
		renderTemplate(w, r, "form_game_session.html", sessionFormData(r, input, true, id))
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input := sessionInputFromForm(r, existing.CreatorID)

		deps := orchestrators.SessionDeps{
			SessionStore: stores.SessionStore,
			AuditStore:   stores.AuditStore,
			GenerateID:   generateID,
			Now:          timeNow,
		}
		updated, err := orchestrators.ExecuteUpdateGameSession(ctx, id, input, deps)
		if err != nil {
			respondSessionError(w, r, err, input, true, id)
			return
		}

		if isHTMLRequest(r) {
			http.Redirect(w, r, "/game-sessions", http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusOK, updated)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleLoans handles GET (list) and POST (create) for /loans
func handleLoans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	isHTML := isHTMLRequest(r)

	if r.Method == "GET" {
		sess, ok := middleware.GetSessionFromContext(ctx)
		if !ok {
			if isHTML {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
			} else {
				http.Error(w, "not authenticated", http.StatusUnauthorized)
			}
			return
		}

		query := projections.GetLoanListQuery{
			ActiveOnly: r.URL.Query().Get("active") == "true",
		}
		// Basic users only see their own loans
		if !middleware.CanManageLibrary(ctx) {
			query.UserID = sess.UserID
		}

		rows, err := projections.QueryGetLoanList(ctx, query, projections.GetLoanListDeps{
			LoanStore: stores.LoanStore,
			GameStore: stores.GameStore,
			UserStore: stores.UserStore,
			Now:       timeNow,
		})
		if err != nil {
			internalError(w, err)
			return
		}
		if isHTML {
			renderTemplate(w, r, "get_loan_list.html", map[string]any{
				"Loans":      rows,
				"ActiveOnly": query.ActiveOnly,
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if rows == nil {
			w.Write([]byte("[]"))
			return
		}
		json.NewEncoder(w).Encode(rows)
		return
	}

	if r.Method == "POST" {
		sess, ok := middleware.GetSessionFromContext(ctx)
		if !ok {
			http.Error(w, "not authenticated", http.StatusUnauthorized)
			return
		}
		if !middleware.CanManageLibrary(ctx) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.CreateLoanInput{
			ActorID:   sess.UserID,
			ActorName: sess.Username,
			ActorRole: sess.Role,
			UserID:    r.FormValue("UserID"),
			GameID:    r.FormValue("GameID"),
		}
		if v := r.FormValue("EstimatedReturnDate"); v != "" {
			d, err := time.Parse("2006-01-02", v)
			if err != nil {
				http.Error(w, "EstimatedReturnDate must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			input.EstimatedReturnDate = d
		}

		deps := orchestrators.CreateLoanDeps{
			LoanStore:    stores.LoanStore,
			GameStore:    stores.GameStore,
			SessionStore: stores.SessionStore,
			AuditStore:   stores.AuditStore,
			GenerateID:   generateID,
			Now:          timeNow,
		}
		l, err := orchestrators.ExecuteCreateLoan(ctx, input, deps)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if isHTML {
			http.Redirect(w, r, "/loans", http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusCreated, l)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleNewLoanForm handles GET /loans/new
func handleNewLoanForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := middleware.GetSessionFromContext(r.Context()); !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if !middleware.CanManageLibrary(r.Context()) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	games, err := stores.GameStore.ListAvailable(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	users, err := stores.UserStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "form_new_loan.html", map[string]any{
		"CSRFToken": csrf.Token(r),
		"Games":     games,
		"Users":     users,
	})
}

// handleReturnLoan handles POST /loans/{id}/return
func handleReturnLoan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	if !middleware.CanManageLibrary(ctx) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	deps := orchestrators.ReturnLoanDeps{
		LoanStore:  stores.LoanStore,
		GameStore:  stores.GameStore,
		AuditStore: stores.AuditStore,
		Now:        timeNow,
	}
	l, err := orchestrators.ExecuteReturnLoan(ctx, orchestrators.ReturnLoanInput{
		LoanID:    id,
		ActorID:   sess.UserID,
		ActorName: sess.Username,
		ActorRole: sess.Role,
	}, deps)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/loans", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handleUsers handles GET (list) and POST (register) for /users
func handleUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	isHTML := isHTMLRequest(r)

	if r.Method == "GET" {
		if !middleware.IsAdmin(ctx) {
			if isHTML {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
			} else {
				http.Error(w, "Forbidden", http.StatusForbidden)
			}
			return
		}
		users, err := stores.UserStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		if isHTML {
			renderTemplate(w, r, "get_user_list.html", map[string]any{
				"Users": users,
			})
			return
		}
		// Strip password hashes from the response
		type safeUser struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Email    string `json:"email"`
			FullName string `json:"fullName"`
			Role     string `json:"role"`
		}
		safe := []safeUser{}
		for _, u := range users {
			safe = append(safe, safeUser{
				ID: u.ID, Username: u.Username, Email: u.Email,
				FullName: u.FullName(), Role: u.Role,
			})
		}
		writeJSON(w, http.StatusOK, safe)
		return
	}

	if r.Method == "POST" {
		if !middleware.IsAdmin(ctx) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		input := orchestrators.RegisterUserInput{}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			input.Username = r.FormValue("Username")
			input.Email = r.FormValue("Email")
			input.Password = r.FormValue("Password")
			input.FirstName = r.FormValue("FirstName")
			input.LastName = r.FormValue("LastName")
			input.Role = r.FormValue("Role")
		} else {
			if err := strictDecode(r, &input); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
		}

		deps := orchestrators.RegisterUserDeps{
			UserStore:  stores.UserStore,
			GenerateID: generateID,
			Now:        timeNow,
		}
		u, err := orchestrators.ExecuteRegisterUser(ctx, input, deps)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		sendWelcomeEmail(u.Email, u.FullName(), u.Username, u.ID)

		if isHTML {
			http.Redirect(w, r, "/users", http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{
			"id":       u.ID,
			"username": u.Username,
			"email":    u.Email,
			"role":     u.Role,
		})
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// sendWelcomeEmail delivers a best-effort welcome message to a new user.
// Failures are logged, never surfaced to the registration flow.
func sendWelcomeEmail(to, fullName, username, userID string) {
	if emailSender == nil {
		return
	}
	req := email.SendRequest{
		From:    emailFromAddress,
		To:      []string{to},
		ReplyTo: emailReplyTo,
		Subject: "Welcome to the game library",
		HTML: "<p>Hi " + template.HTMLEscapeString(fullName) + ",</p>" +
			"<p>Your account <strong>" + template.HTMLEscapeString(username) +
			"</strong> is ready. You can now browse the catalog, borrow games and join sessions.</p>",
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if _, err := emailSender.Send(ctx, req); err != nil {
			slog.Warn("welcome_email", "error", err.Error(), "user_id", userID)
		}
	}()
}
