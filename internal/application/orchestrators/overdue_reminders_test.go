package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gameshelf/internal/adapters/email"
	"gameshelf/internal/domain/loan"
	"gameshelf/internal/domain/user"
)

// mockSender records sent emails for testing.
type mockSender struct {
	sent    []email.SendRequest
	failFor string // recipient address that errors
}

func (m *mockSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	if m.failFor != "" && len(req.To) > 0 && req.To[0] == m.failFor {
		return email.SendResult{}, errors.New("delivery failed")
	}
	m.sent = append(m.sent, req)
	return email.SendResult{MessageID: "msg-1"}, nil
}

func (m *mockSender) SendBatch(ctx context.Context, reqs []email.SendRequest) ([]email.SendResult, error) {
	var results []email.SendResult
	for _, req := range reqs {
		r, err := m.Send(ctx, req)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func reminderFixtures() (*mockLoanStore, *mockUserStore, *mockGameStore) {
	loans := newMockLoanStore()
	// Overdue by three days
	loans.loans["l1"] = loan.Loan{
		ID: "l1", UserID: "u1", GameID: "g1", Status: loan.StatusActive,
		LoanDate: fixedTime.AddDate(0, 0, -10), EstimatedReturnDate: fixedTime.AddDate(0, 0, -3),
	}
	// Active but not due yet
	loans.loans["l2"] = loan.Loan{
		ID: "l2", UserID: "u2", GameID: "g1", Status: loan.StatusActive,
		LoanDate: fixedTime, EstimatedReturnDate: fixedTime.AddDate(0, 0, 5),
	}

	users := newMockUserStore()
	users.users["u1"] = user.User{ID: "u1", Username: "alice", Email: "alice@example.com", FirstName: "Alice"}
	users.users["u2"] = user.User{ID: "u2", Username: "bob", Email: "bob@example.com"}

	games := newMockGameStore()
	games.games["g1"] = availableGame()
	return loans, users, games
}

// TestExecuteSendOverdueReminders tests that only overdue borrowers get mail.
func TestExecuteSendOverdueReminders(t *testing.T) {
	loans, users, games := reminderFixtures()
	sender := &mockSender{}

	sent, err := ExecuteSendOverdueReminders(context.Background(), OverdueReminderDeps{
		LoanStore: loans, UserStore: users, GameStore: games,
		Sender: sender, From: "library@example.com", Now: fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	req := sender.sent[0]
	if req.To[0] != "alice@example.com" {
		t.Errorf("reminder went to %s, want the overdue borrower", req.To[0])
	}
	if !strings.Contains(req.Subject, "Catan") {
		t.Errorf("subject must name the game, got %q", req.Subject)
	}
}

// TestExecuteSendOverdueReminders_SendFailureContinues tests that one failed
// delivery does not abort the run.
func TestExecuteSendOverdueReminders_SendFailureContinues(t *testing.T) {
	loans, users, games := reminderFixtures()
	// Make the second borrower overdue too
	l := loans.loans["l2"]
	l.EstimatedReturnDate = fixedTime.AddDate(0, 0, -1)
	loans.loans["l2"] = l

	sender := &mockSender{failFor: "alice@example.com"}

	sent, err := ExecuteSendOverdueReminders(context.Background(), OverdueReminderDeps{
		LoanStore: loans, UserStore: users, GameStore: games,
		Sender: sender, From: "library@example.com", Now: fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1 (the delivery that succeeded)", sent)
	}
}
