package ports

import (
	"context"

	"github.com/agritrace/produce-chain/internal/core/domain"
)

// RegisterProduceInput carries the fields for registering a new produce.
// Price arrives as a string: the ledger boundary uses unbounded-precision
// integers, so parsing is deferred to the service where overflow is rejected
// rather than truncated.
type RegisterProduceInput struct {
	Caller      Claims
	ProduceType string
	Origin      string
	Quality     string
	Price       string
}

// TransferProduceInput carries the fields for a custody transfer.
type TransferProduceInput struct {
	Caller   Claims
	ID       string
	NewOwner string
	Details  string
	NewPrice string
}

// CustodyService is the role-checked facade over the external ledger.
type CustodyService interface {
	// RegisterProduce creates a produce on the ledger. Farmer only.
	RegisterProduce(ctx context.Context, input RegisterProduceInput) (uint64, error)
	// TransferProduce hands custody to the next role in the chain and, on
	// success, records the id in the caller's transfer index.
	TransferProduce(ctx context.Context, input TransferProduceInput) error
	// ProducesByOwner lists the caller's current holdings.
	ProducesByOwner(ctx context.Context, caller Claims) ([]domain.Produce, error)
	// Trace returns the full custody history of one produce.
	Trace(ctx context.Context, id string) (*domain.Produce, error)
	// TransferredTraces reconstructs the traces of every produce the caller
	// originated and has since transferred away. Locally-indexed ids the
	// ledger no longer knows are skipped, not errors.
	TransferredTraces(ctx context.Context, caller Claims) ([]domain.Produce, error)
	// VerifyStakeholder reports whether phone appears in the produce's trace.
	VerifyStakeholder(ctx context.Context, id string, phone string) (bool, error)
	// RebuildIndex recomputes the caller's transfer index from a full ledger
	// scan and returns the rebuilt set.
	RebuildIndex(ctx context.Context, phone string) ([]uint64, error)
}
