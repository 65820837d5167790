package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gameshelf/internal/domain/audit"
	"gameshelf/internal/domain/game"
	"gameshelf/internal/domain/loan"
)

// mockGameStore implements the game store interfaces for testing.
type mockGameStore struct {
	games map[string]game.Game
}

func newMockGameStore() *mockGameStore {
	return &mockGameStore{games: make(map[string]game.Game)}
}

func (m *mockGameStore) Save(_ context.Context, g game.Game) error {
	m.games[g.ID] = g
	return nil
}

func (m *mockGameStore) GetByID(_ context.Context, id string) (game.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return game.Game{}, errors.New("not found")
	}
	return g, nil
}

func (m *mockGameStore) List(_ context.Context) ([]game.Game, error) {
	var out []game.Game
	for _, g := range m.games {
		out = append(out, g)
	}
	return out, nil
}

// mockLoanStore implements the loan store interfaces for testing.
type mockLoanStore struct {
	loans map[string]loan.Loan
}

func newMockLoanStore() *mockLoanStore {
	return &mockLoanStore{loans: make(map[string]loan.Loan)}
}

func (m *mockLoanStore) Save(_ context.Context, l loan.Loan) error {
	m.loans[l.ID] = l
	return nil
}

func (m *mockLoanStore) GetByID(_ context.Context, id string) (loan.Loan, error) {
	l, ok := m.loans[id]
	if !ok {
		return loan.Loan{}, errors.New("not found")
	}
	return l, nil
}

func (m *mockLoanStore) ListActive(_ context.Context) ([]loan.Loan, error) {
	var out []loan.Loan
	for _, l := range m.loans {
		if l.Status == loan.StatusActive {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLoanStore) ListActiveByGame(_ context.Context, gameID string) ([]loan.Loan, error) {
	var out []loan.Loan
	for _, l := range m.loans {
		if l.GameID == gameID && l.Status == loan.StatusActive {
			out = append(out, l)
		}
	}
	return out, nil
}

// mockAuditStore records audit events for testing.
type mockAuditStore struct {
	events []audit.Event
}

func (m *mockAuditStore) Save(_ context.Context, e audit.Event) error {
	m.events = append(m.events, e)
	return nil
}

func availableGame() game.Game {
	return game.Game{
		ID: "g1", Name: "Catan", MinPlayers: 3, MaxPlayers: 4,
		DurationMinutes: 90, Available: true, State: game.StateGood,
		AcquisitionDate: fixedTime,
	}
}

// TestExecuteCreateLoan_Valid tests checking out an available game.
func TestExecuteCreateLoan_Valid(t *testing.T) {
	games := newMockGameStore()
	games.games["g1"] = availableGame()
	loans := newMockLoanStore()
	audits := &mockAuditStore{}

	l, err := ExecuteCreateLoan(context.Background(), CreateLoanInput{
		ActorID: "u1", ActorName: "alice", ActorRole: "admin",
		UserID: "u2", GameID: "g1",
		EstimatedReturnDate: fixedTime.AddDate(0, 0, 7),
	}, CreateLoanDeps{
		LoanStore: loans, GameStore: games, AuditStore: audits,
		GenerateID: fixedID, Now: fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Status != loan.StatusActive {
		t.Errorf("expected status active, got %s", l.Status)
	}
	if games.games["g1"].Available {
		t.Error("game must be unavailable while on loan")
	}
	if len(audits.events) != 1 {
		t.Fatalf("expected 1 audit event, got %d", len(audits.events))
	}
	if audits.events[0].Action != audit.ActionCreate || audits.events[0].Category != audit.CategoryLoan {
		t.Errorf("unexpected audit event: %+v", audits.events[0])
	}
	if !strings.Contains(audits.events[0].Description, "Catan") {
		t.Errorf("audit description must name the game, got %q", audits.events[0].Description)
	}
}

// TestExecuteCreateLoan_GameUnavailable tests that an unavailable game is rejected.
func TestExecuteCreateLoan_GameUnavailable(t *testing.T) {
	games := newMockGameStore()
	g := availableGame()
	g.Available = false
	games.games["g1"] = g

	_, err := ExecuteCreateLoan(context.Background(), CreateLoanInput{
		UserID: "u2", GameID: "g1",
		EstimatedReturnDate: fixedTime.AddDate(0, 0, 7),
	}, CreateLoanDeps{
		LoanStore: newMockLoanStore(), GameStore: games,
		GenerateID: fixedID, Now: fixedNow,
	})
	if err != game.ErrNotAvailable {
		t.Errorf("expected ErrNotAvailable, got %v", err)
	}
}

// TestExecuteCreateLoan_ActiveLoanExists tests the double-checkout guard.
func TestExecuteCreateLoan_ActiveLoanExists(t *testing.T) {
	games := newMockGameStore()
	games.games["g1"] = availableGame()
	loans := newMockLoanStore()
	loans.loans["l0"] = loan.Loan{ID: "l0", UserID: "u9", GameID: "g1", Status: loan.StatusActive,
		LoanDate: fixedTime, EstimatedReturnDate: fixedTime.AddDate(0, 0, 7)}

	_, err := ExecuteCreateLoan(context.Background(), CreateLoanInput{
		UserID: "u2", GameID: "g1",
		EstimatedReturnDate: fixedTime.AddDate(0, 0, 7),
	}, CreateLoanDeps{
		LoanStore: loans, GameStore: games,
		GenerateID: fixedID, Now: fixedNow,
	})
	if err != game.ErrNotAvailable {
		t.Errorf("expected ErrNotAvailable, got %v", err)
	}
}

// TestExecuteCreateLoan_ReturnDateNotAhead tests that the return date must be
// after today.
func TestExecuteCreateLoan_ReturnDateNotAhead(t *testing.T) {
	games := newMockGameStore()
	games.games["g1"] = availableGame()

	_, err := ExecuteCreateLoan(context.Background(), CreateLoanInput{
		UserID: "u2", GameID: "g1",
		EstimatedReturnDate: fixedTime.AddDate(0, 0, -1),
	}, CreateLoanDeps{
		LoanStore: newMockLoanStore(), GameStore: games,
		GenerateID: fixedID, Now: fixedNow,
	})
	if err != loan.ErrReturnDateNotAhead {
		t.Errorf("expected ErrReturnDateNotAhead, got %v", err)
	}
}

// TestExecuteCreateLoan_DefaultReturnDate tests the one-week default when no
// date is proposed.
func TestExecuteCreateLoan_DefaultReturnDate(t *testing.T) {
	games := newMockGameStore()
	games.games["g1"] = availableGame()

	l, err := ExecuteCreateLoan(context.Background(), CreateLoanInput{
		UserID: "u2", GameID: "g1",
	}, CreateLoanDeps{
		LoanStore: newMockLoanStore(), GameStore: games,
		GenerateID: fixedID, Now: fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	if !l.EstimatedReturnDate.Equal(want) {
		t.Errorf("default return date = %v, want %v", l.EstimatedReturnDate, want)
	}
}
