package projections

import (
	"context"
	"time"
)

// LoanRow is one line in the loans listing.
type LoanRow struct {
	ID                  string `json:"id"`
	GameID              string `json:"gameId"`
	GameName            string `json:"gameName"`
	Username            string `json:"username"`
	BorrowerName        string `json:"borrowerName"`
	LoanDate            string `json:"loanDate"`
	EstimatedReturnDate string `json:"estimatedReturnDate"`
	ActualReturnDate    string `json:"actualReturnDate,omitempty"`
	Status              string `json:"status"`
	Overdue             bool   `json:"overdue"`
}

// GetLoanListQuery carries query parameters.
type GetLoanListQuery struct {
	UserID     string // restrict to one borrower, empty for all
	ActiveOnly bool
}

// GetLoanListDeps holds dependencies for GetLoanList.
type GetLoanListDeps struct {
	LoanStore LoanStore
	GameStore GameStore
	UserStore UserStore
	Now       func() time.Time
}

// QueryGetLoanList assembles the loans listing with resolved game and
// borrower names. Rows keep their store order (loan date descending).
// PRE: deps are initialized
// POST: Overdue is set from today's date, never from row status alone
func QueryGetLoanList(ctx context.Context, query GetLoanListQuery, deps GetLoanListDeps) ([]LoanRow, error) {
	loans, err := deps.LoanStore.List(ctx)
	if query.UserID != "" {
		loans, err = deps.LoanStore.ListByUser(ctx, query.UserID)
	}
	if err != nil {
		return nil, err
	}

	now := deps.Now()
	var rows []LoanRow
	for _, l := range loans {
		if query.ActiveOnly && !l.ActualReturnDate.IsZero() {
			continue
		}
		row := LoanRow{
			ID:                  l.ID,
			GameID:              l.GameID,
			LoanDate:            l.LoanDate.Format("2006-01-02"),
			EstimatedReturnDate: l.EstimatedReturnDate.Format("2006-01-02"),
			Status:              l.Status,
			Overdue:             l.IsOverdue(now),
		}
		if !l.ActualReturnDate.IsZero() {
			row.ActualReturnDate = l.ActualReturnDate.Format("2006-01-02")
		}
		if g, err := deps.GameStore.GetByID(ctx, l.GameID); err == nil {
			row.GameName = g.Name
		}
		if u, err := deps.UserStore.GetByID(ctx, l.UserID); err == nil {
			row.Username = u.Username
			row.BorrowerName = u.FullName()
		}
		rows = append(rows, row)
	}
	return rows, nil
}
