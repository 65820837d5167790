package web

import (
	"net/http"
	"strconv"

	"gameshelf/internal/adapters/http/middleware"
	auditStore "gameshelf/internal/adapters/storage/audit"
	auditDomain "gameshelf/internal/domain/audit"
)

// handleAuditTrail renders the audit trail page (GET /audit)
// PRE: User must be authenticated as admin
// POST: Renders audit events with optional filters
func handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if !middleware.IsAdmin(r.Context()) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	ctx := r.Context()

	// Parse query parameters for filtering
	filter := auditStore.Filter{}

	if category := r.URL.Query().Get("category"); category != "" {
		cat := auditDomain.Category(category)
		filter.Category = &cat
	}
	if action := r.URL.Query().Get("action"); action != "" {
		act := auditDomain.Action(action)
		filter.Action = &act
	}
	if actorID := r.URL.Query().Get("actor_id"); actorID != "" {
		filter.ActorID = &actorID
	}
	if severity := r.URL.Query().Get("severity"); severity != "" {
		sev := auditDomain.Severity(severity)
		filter.Severity = &sev
	}
	if resourceID := r.URL.Query().Get("resource_id"); resourceID != "" {
		filter.ResourceID = &resourceID
	}
	if fromDate := r.URL.Query().Get("from"); fromDate != "" {
		filter.FromDate = &fromDate
	}
	if toDate := r.URL.Query().Get("to"); toDate != "" {
		filter.ToDate = &toDate
	}

	// Parse limit, default to 100
	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	events, err := stores.AuditStore.List(ctx, filter, limit)
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "get_audit_trail.html", map[string]any{
			"Events": events,
			"Limit":  limit,
		})
		return
	}
	writeJSON(w, http.StatusOK, events)
}
