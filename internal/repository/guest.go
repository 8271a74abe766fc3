package repository

import (
	"context"
	"fmt"

	"guestmatch/internal/matching"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgxpool.Pool the guest repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type GuestRepository struct {
	db Querier
}

func NewGuestRepository(db Querier) *GuestRepository {
	return &GuestRepository{db: db}
}

const listGuestsByEvent = `
SELECT
	g.id,
	COALESCE(g.first_name, ''),
	COALESCE(g.last_name, ''),
	COALESCE(g.organization, ''),
	COALESCE(g.organization_type, ''),
	COALESCE(g.bank_title, ''),
	COALESCE(g.post, ''),
	COALESCE(g.company_title, ''),
	COALESCE(g.holding_title, ''),
	COALESCE(g.mobile_number, ''),
	g.is_head
FROM guests g
WHERE g.event_id = $1
ORDER BY g.id
`

// ListByEvent loads every guest registered for an event. Nullable text
// columns collapse to empty strings so the matching engine never sees NULLs.
func (r *GuestRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]matching.GuestRecord, error) {
	rows, err := r.db.Query(ctx, listGuestsByEvent, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests for event %s: %w", eventID, err)
	}
	defer rows.Close()

	var records []matching.GuestRecord
	for rows.Next() {
		var rec matching.GuestRecord
		var isHead *bool
		if err := rows.Scan(
			&rec.ID,
			&rec.FirstName,
			&rec.LastName,
			&rec.Organization,
			&rec.OrganizationType,
			&rec.BankTitle,
			&rec.Post,
			&rec.CompanyTitle,
			&rec.HoldingTitle,
			&rec.MobileNumber,
			&isHead,
		); err != nil {
			return nil, fmt.Errorf("failed to scan guest row: %w", err)
		}
		rec.IsHead = isHead
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read guest rows: %w", err)
	}

	return records, nil
}
