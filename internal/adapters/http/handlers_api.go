package web

import (
	"net/http"

	"gameshelf/internal/adapters/http/middleware"
	draftStore "gameshelf/internal/adapters/storage/draft"
	"gameshelf/internal/application/orchestrators"
	"gameshelf/internal/application/projections"
)

// handleLoanGameInfo handles GET /loans/api/game-info/{gameId}
// Enriches the new-loan form with game details, upcoming sessions and
// loan-conflict data. An unknown game is a soft failure, not a 404, so the
// form can show the message inline.
func handleLoanGameInfo(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	gameID := r.PathValue("gameId")
	if gameID == "" {
		http.Error(w, "missing gameId", http.StatusBadRequest)
		return
	}

	result, err := projections.QueryGetLoanGameInfo(r.Context(), gameID, gameInfoDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSessionGameInfo handles GET /game-sessions/api/game-info/{gameId}
// Same enrichment as the loan variant minus the conflict fields.
func handleSessionGameInfo(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	gameID := r.PathValue("gameId")
	if gameID == "" {
		http.Error(w, "missing gameId", http.StatusBadRequest)
		return
	}

	result, err := projections.QueryGetSessionGameInfo(r.Context(), gameID, gameInfoDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func gameInfoDeps() projections.GameInfoDeps {
	return projections.GameInfoDeps{
		GameStore:    stores.GameStore,
		SessionStore: stores.SessionStore,
		UserStore:    stores.UserStore,
		Now:          timeNow,
	}
}

// handleGetGameDetail handles GET /api/games/{id}
func handleGetGameDetail(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	result, err := projections.QueryGetGameDetail(r.Context(), id, projections.GameDetailDeps{
		GameStore:    stores.GameStore,
		SessionStore: stores.SessionStore,
		LoanStore:    stores.LoanStore,
		UserStore:    stores.UserStore,
		Now:          timeNow,
	})
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCheckUsername handles GET /api/users/check-username?username=X&excludeId=Y
// Backs the real-time availability check on the registration and profile forms.
func handleCheckUsername(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	excludeID := r.URL.Query().Get("excludeId")

	result, err := projections.QueryCheckUsername(r.Context(), username, excludeID, projections.CheckIdentityDeps{
		UserStore: stores.UserStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCheckEmail handles GET /api/users/check-email?email=X&excludeId=Y
func handleCheckEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	excludeID := r.URL.Query().Get("excludeId")

	result, err := projections.QueryCheckEmail(r.Context(), email, excludeID, projections.CheckIdentityDeps{
		UserStore: stores.UserStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGameDraft handles GET/PUT/DELETE for /api/drafts/game
// The new-game form auto-saves its state here so a half-filled form survives
// navigation and restarts. The payload is opaque JSON owned by the form.
func handleGameDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case "GET":
		d, err := stores.DraftStore.Get(ctx, sess.UserID, orchestrators.GameDraftForm)
		if err != nil {
			http.Error(w, "no draft", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, d)

	case "PUT":
		var input struct {
			Payload string `json:"payload"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if input.Payload == "" {
			http.Error(w, "payload is required", http.StatusBadRequest)
			return
		}
		d := draftStore.Draft{
			UserID:    sess.UserID,
			Form:      orchestrators.GameDraftForm,
			Payload:   input.Payload,
			UpdatedAt: timeNow(),
		}
		if err := stores.DraftStore.Put(ctx, d); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case "DELETE":
		if err := stores.DraftStore.Delete(ctx, sess.UserID, orchestrators.GameDraftForm); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
