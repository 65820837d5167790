package projections

import (
	"context"
)

// SessionRow is one line in the sessions listing.
type SessionRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	GameName    string `json:"gameName"`
	CreatorName string `json:"creatorName"`
	DateRange   string `json:"dateRange"`
	TimeRange   string `json:"timeRange"`
	MaxPlayers  int    `json:"maxPlayers"`
	Status      string `json:"status"`
	MultiDay    bool   `json:"multiDay"`
}

// GetSessionListDeps holds dependencies for GetSessionList.
type GetSessionListDeps struct {
	SessionStore SessionStore
	UserStore    UserStore
}

// QueryGetSessionList assembles the sessions listing with resolved creator
// names. Rows keep their store order (start date descending).
// PRE: deps are initialized
func QueryGetSessionList(ctx context.Context, deps GetSessionListDeps) ([]SessionRow, error) {
	sessions, err := deps.SessionStore.List(ctx)
	if err != nil {
		return nil, err
	}

	var rows []SessionRow
	for _, s := range sessions {
		row := SessionRow{
			ID:         s.ID,
			Title:      s.Title,
			GameName:   s.CustomGameName,
			DateRange:  s.FormattedDateRange(),
			TimeRange:  s.FormattedTimeRange(),
			MaxPlayers: s.MaxPlayers,
			Status:     s.Status,
			MultiDay:   s.IsMultiDay(),
		}
		if u, err := deps.UserStore.GetByID(ctx, s.CreatorID); err == nil {
			row.CreatorName = u.FullName()
		}
		rows = append(rows, row)
	}
	return rows, nil
}
