package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/agritrace/produce-chain/internal/api/metrics"
	"github.com/agritrace/produce-chain/internal/core/domain"
	"github.com/agritrace/produce-chain/internal/core/ports"
)

// AsyncNotifier accepts fire-and-forget outbound messages. Used for
// informational notifications only; nothing correctness-critical rides on it.
type AsyncNotifier interface {
	Enqueue(phone, message string)
}

// CustodyService is the role-checked facade over the external custody ledger.
// The ledger is the source of truth for ownership and history; the transfer
// index kept on the caller's identity record is a derived projection updated
// only after the ledger commits.
type CustodyService struct {
	ledger     ports.Ledger
	identities ports.IdentityRepository
	notify     AsyncNotifier
	logger     zerolog.Logger
}

func NewCustodyService(
	ledger ports.Ledger,
	identities ports.IdentityRepository,
	notify AsyncNotifier,
	logger zerolog.Logger,
) *CustodyService {
	return &CustodyService{
		ledger:     ledger,
		identities: identities,
		notify:     notify,
		logger:     logger,
	}
}

// RegisterProduce creates a new produce on the ledger. Only farmers can
// register; the ledger assigns the id and writes the genesis transaction.
func (s *CustodyService) RegisterProduce(ctx context.Context, input ports.RegisterProduceInput) (uint64, error) {
	if input.Caller.Role != domain.RoleFarmer {
		return 0, domain.ErrNotFarmer
	}
	price, err := domain.ParseLedgerUint(input.Price)
	if err != nil {
		return 0, err
	}

	id, err := s.ledger.RegisterProduce(ctx, input.ProduceType, input.Origin, input.Quality, price, input.Caller.Phone)
	if err != nil {
		s.countLedgerError("register", err)
		return 0, err
	}

	metrics.ProducesRegisteredTotal.WithLabelValues(input.ProduceType).Inc()
	s.logger.Info().
		Uint64("produce_id", id).
		Str("owner", input.Caller.Phone).
		Str("produce_type", input.ProduceType).
		Msg("produce registered")

	return id, nil
}

// TransferProduce hands custody to the next role in the chain. The ledger
// mutation happens strictly before the local index write: a crash in between
// leaves the index missing an entry, never claiming a transfer that did not
// commit.
func (s *CustodyService) TransferProduce(ctx context.Context, input ports.TransferProduceInput) error {
	recipient, err := s.identities.FindByPhone(ctx, input.NewOwner)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return domain.ErrUnknownRecipient
		}
		return err
	}

	if !input.Caller.Role.CanTransferTo(recipient.Role) {
		metrics.TransfersTotal.WithLabelValues("illegal_transition").Inc()
		return domain.ErrIllegalTransfer
	}

	id, err := domain.ParseLedgerUint(input.ID)
	if err != nil {
		return err
	}
	newPrice, err := domain.ParseLedgerUint(input.NewPrice)
	if err != nil {
		return err
	}

	if err := s.ledger.TransferProduce(ctx, id, input.Caller.Phone, input.NewOwner, input.Details, newPrice); err != nil {
		s.countLedgerError("transfer", err)
		return err
	}

	// Ledger committed. The index write is best effort: a failure here is
	// logged and the index stays rebuildable from a full ledger scan.
	if err := s.identities.RecordTransfer(ctx, input.Caller.Phone, id); err != nil {
		s.logger.Error().Err(err).
			Uint64("produce_id", id).
			Str("phone", input.Caller.Phone).
			Msg("transfer committed but index update failed")
	}

	metrics.TransfersTotal.WithLabelValues("ok").Inc()
	s.logger.Info().
		Uint64("produce_id", id).
		Str("from", input.Caller.Phone).
		Str("to", input.NewOwner).
		Msg("produce transferred")

	if s.notify != nil {
		s.notify.Enqueue(input.NewOwner, fmt.Sprintf("Produce %d has been transferred to you.", id))
	}

	return nil
}

// ProducesByOwner returns the caller's current holdings. Reads are keyed by
// the caller's own phone; there is no cross-identity access.
func (s *CustodyService) ProducesByOwner(ctx context.Context, caller ports.Claims) ([]domain.Produce, error) {
	produces, err := s.ledger.ProducesByOwner(ctx, caller.Phone)
	if err != nil {
		s.countLedgerError("query", err)
		return nil, err
	}
	return produces, nil
}

// Trace returns the full custody history of one produce.
func (s *CustodyService) Trace(ctx context.Context, id string) (*domain.Produce, error) {
	produceID, err := domain.ParseLedgerUint(id)
	if err != nil {
		return nil, err
	}
	produce, err := s.ledger.Trace(ctx, produceID)
	if err != nil {
		if !errors.Is(err, domain.ErrProduceNotFound) {
			s.countLedgerError("trace", err)
		}
		return nil, err
	}
	return produce, nil
}

// TransferredTraces combines the local transfer index (which ids to ask
// about) with per-id ledger traces (current state and history). Indexed ids
// the ledger no longer knows are skipped: the ledger is the source of truth
// for existence.
func (s *CustodyService) TransferredTraces(ctx context.Context, caller ports.Claims) ([]domain.Produce, error) {
	ids, err := s.identities.TransferredProduceIDs(ctx, caller.Phone)
	if err != nil {
		return nil, err
	}

	traces := make([]domain.Produce, 0, len(ids))
	for _, id := range ids {
		produce, err := s.ledger.Trace(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrProduceNotFound) {
				continue
			}
			s.countLedgerError("trace", err)
			return nil, err
		}
		traces = append(traces, *produce)
	}
	return traces, nil
}

// VerifyStakeholder reports whether phone appears anywhere in the produce's
// custody trace.
func (s *CustodyService) VerifyStakeholder(ctx context.Context, id string, phone string) (bool, error) {
	produceID, err := domain.ParseLedgerUint(id)
	if err != nil {
		return false, err
	}
	ok, err := s.ledger.VerifyStakeholderInTrace(ctx, produceID, phone)
	if err != nil {
		s.countLedgerError("query", err)
		return false, err
	}
	return ok, nil
}

// RebuildIndex recomputes phone's transferred-away set from a full ledger
// scan and overwrites the stored index. An id belongs in the set when phone
// appears as the From of any history entry.
func (s *CustodyService) RebuildIndex(ctx context.Context, phone string) ([]uint64, error) {
	produces, err := s.ledger.AllProduces(ctx)
	if err != nil {
		s.countLedgerError("scan", err)
		return nil, err
	}

	seen := make(map[uint64]struct{})
	for _, p := range produces {
		for _, tx := range p.History {
			if tx.From != nil && *tx.From == phone {
				seen[p.ID] = struct{}{}
				break
			}
		}
	}

	ids := make([]uint64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if err := s.identities.ReplaceTransferIndex(ctx, phone, ids); err != nil {
		return nil, fmt.Errorf("replace transfer index: %w", err)
	}

	s.logger.Info().Str("phone", phone).Int("count", len(ids)).Msg("transfer index rebuilt")
	return ids, nil
}

func (s *CustodyService) countLedgerError(op string, err error) {
	reason := "rejected"
	if errors.Is(err, domain.ErrLedgerUnavailable) {
		reason = "unavailable"
	}
	metrics.LedgerErrorsTotal.WithLabelValues(op, reason).Inc()
}
