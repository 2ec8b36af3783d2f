package ports

import (
	"context"

	"github.com/agritrace/produce-chain/internal/core/domain"
)

// IdentityRepository defines persistence for phone-bound identities and the
// per-identity transfer index that lives on the identity record.
type IdentityRepository interface {
	FindByPhone(ctx context.Context, phone string) (*domain.Identity, error)
	// Create persists a new identity. Returns domain.ErrIdentityExists when
	// the phone is already bound to any role.
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)

	// RecordTransfer appends produceID to the identity's transferred-away set.
	// Idempotent: recording the same id twice must not duplicate it.
	RecordTransfer(ctx context.Context, phone string, produceID uint64) error
	// TransferredProduceIDs returns the identity's transferred-away set.
	TransferredProduceIDs(ctx context.Context, phone string) ([]uint64, error)
	// ReplaceTransferIndex overwrites the identity's transferred-away set,
	// used when rebuilding the index from a full ledger scan.
	ReplaceTransferIndex(ctx context.Context, phone string, produceIDs []uint64) error
}
