package projections

import (
	"context"
	"testing"

	domainLoan "gameshelf/internal/domain/loan"
)

// TestQueryGetGameDetail_OnLoan tests loan state on the detail view.
func TestQueryGetGameDetail_OnLoan(t *testing.T) {
	games := newMockGameStore()
	g := catanGame()
	g.Available = false
	games.games["g1"] = g

	loans := &mockLoanStore{loans: []domainLoan.Loan{{
		ID: "l1", UserID: "u1", GameID: "g1", Status: domainLoan.StatusActive,
		LoanDate: fixedTime.AddDate(0, 0, -2), EstimatedReturnDate: fixedTime.AddDate(0, 0, 5),
	}}}

	res, err := QueryGetGameDetail(context.Background(), "g1", GameDetailDeps{
		GameStore: games, SessionStore: &mockSessionStore{}, LoanStore: loans,
		UserStore: newMockUserStore(), Now: fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OnLoan {
		t.Error("expected OnLoan")
	}
	if res.DueBack != "2026-03-06" {
		t.Errorf("DueBack = %q", res.DueBack)
	}
	if res.Overdue {
		t.Error("loan due in the future is not overdue")
	}
}

// TestQueryGetGameDetail_NotOnLoan tests the shelf state.
func TestQueryGetGameDetail_NotOnLoan(t *testing.T) {
	games := newMockGameStore()
	games.games["g1"] = catanGame()

	res, err := QueryGetGameDetail(context.Background(), "g1", GameDetailDeps{
		GameStore: games, SessionStore: &mockSessionStore{}, LoanStore: &mockLoanStore{},
		UserStore: newMockUserStore(), Now: fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OnLoan || res.DueBack != "" {
		t.Errorf("expected shelf state, got %+v", res)
	}
}

// TestQueryGetGameDetail_UnknownGame tests the hard failure, unlike the
// enrichment endpoints this is an error.
func TestQueryGetGameDetail_UnknownGame(t *testing.T) {
	_, err := QueryGetGameDetail(context.Background(), "missing", GameDetailDeps{
		GameStore: newMockGameStore(), SessionStore: &mockSessionStore{}, LoanStore: &mockLoanStore{},
		UserStore: newMockUserStore(), Now: fixedNow,
	})
	if err == nil {
		t.Error("expected error for unknown game")
	}
}
