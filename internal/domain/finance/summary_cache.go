package finance

import (
	"context"

	"github.com/google/uuid"
)

// AccountSummaryCache stores computed account summaries.
// A miss returns (nil, nil).
type AccountSummaryCache interface {
	Get(ctx context.Context, customerID uuid.UUID) (*AccountSummary, error)
	Set(ctx context.Context, summary *AccountSummary) error
	Invalidate(ctx context.Context, customerID uuid.UUID) error
}
