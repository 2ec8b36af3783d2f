package ports

import (
	"context"

	"github.com/agritrace/produce-chain/internal/core/domain"
)

// Ledger is the typed interface to the external custody ledger service, the
// system of record for produce ownership and transfer history.
//
// Implementations must honour the error taxonomy: a rejection reported by the
// ledger surfaces as *domain.LedgerRejectedError carrying the verbatim
// reason; transport failures and timeouts surface as
// domain.ErrLedgerUnavailable.
type Ledger interface {
	// RegisterProduce writes a new produce with its genesis transaction
	// (From absent) and returns the ledger-assigned id.
	RegisterProduce(ctx context.Context, produceType, origin, quality string, price uint64, owner string) (uint64, error)
	// TransferProduce reassigns ownership and appends a history entry.
	TransferProduce(ctx context.Context, id uint64, from, to, details string, newPrice uint64) error
	// ProducesByOwner returns every produce currently owned by owner.
	ProducesByOwner(ctx context.Context, owner string) ([]domain.Produce, error)
	// Trace returns the full history of a single produce, or
	// domain.ErrProduceNotFound when the id is unknown.
	Trace(ctx context.Context, id uint64) (*domain.Produce, error)
	// AllProduces returns every produce on the ledger. Used only for
	// rebuilding the local transfer index.
	AllProduces(ctx context.Context) ([]domain.Produce, error)
	// VerifyStakeholderInTrace reports whether phone appears anywhere in the
	// produce's custody trace.
	VerifyStakeholderInTrace(ctx context.Context, id uint64, phone string) (bool, error)
}
