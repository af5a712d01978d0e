package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a purchasable credits package shown to the client UI.
type Plan struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Credits   int64
	IsActive  bool
	CreatedAt time.Time
}

type PlanRepository interface {
	// SeedDefaults inserts the given plans unless a plan with the same
	// name already exists.
	SeedDefaults(ctx context.Context, plans []*Plan) error
	ListActive(ctx context.Context) ([]*Plan, error)
}
