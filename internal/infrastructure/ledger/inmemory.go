package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/agritrace/produce-chain/internal/core/domain"
)

const genesisDetails = "Produce registered"

// inMemoryLedger is a concurrency-safe in-process ledger with the full
// custody semantics: monotonic ids, a genesis transaction per produce, and
// ownership reassignment with history append on transfer. Used by unit tests
// and local development mode.
type inMemoryLedger struct {
	mu       sync.RWMutex
	nextID   uint64
	produces map[uint64]*domain.Produce
	now      func() time.Time
}

// NewInMemory creates an empty in-memory ledger. Ids start at 1.
func NewInMemory() *inMemoryLedger {
	return &inMemoryLedger{
		nextID:   1,
		produces: make(map[uint64]*domain.Produce),
		now:      time.Now,
	}
}

func (l *inMemoryLedger) RegisterProduce(_ context.Context, produceType, origin, quality string, price uint64, owner string) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++

	now := l.now().UTC()
	l.produces[id] = &domain.Produce{
		ID:             id,
		ProduceType:    produceType,
		Origin:         origin,
		Quality:        quality,
		Price:          price,
		CurrentOwner:   owner,
		RegisteredTime: now,
		History: []domain.Transaction{{
			From:      nil,
			To:        owner,
			Timestamp: now,
			Details:   genesisDetails,
		}},
	}

	return id, nil
}

func (l *inMemoryLedger) TransferProduce(_ context.Context, id uint64, from, to, details string, newPrice uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.produces[id]
	if !ok {
		return &domain.LedgerRejectedError{Reason: "produce not found"}
	}
	if p.CurrentOwner != from {
		return &domain.LedgerRejectedError{Reason: "sender is not the current owner"}
	}

	sender := from
	price := newPrice
	p.CurrentOwner = to
	p.Price = newPrice
	p.History = append(p.History, domain.Transaction{
		From:      &sender,
		To:        to,
		Timestamp: l.now().UTC(),
		Details:   details,
		NewPrice:  &price,
	})

	return nil
}

func (l *inMemoryLedger) ProducesByOwner(_ context.Context, owner string) ([]domain.Produce, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []domain.Produce
	for _, p := range l.produces {
		if p.CurrentOwner == owner {
			out = append(out, cloneProduce(p))
		}
	}
	return out, nil
}

func (l *inMemoryLedger) Trace(_ context.Context, id uint64) (*domain.Produce, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.produces[id]
	if !ok {
		return nil, domain.ErrProduceNotFound
	}
	clone := cloneProduce(p)
	return &clone, nil
}

func (l *inMemoryLedger) AllProduces(_ context.Context) ([]domain.Produce, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Produce, 0, len(l.produces))
	for _, p := range l.produces {
		out = append(out, cloneProduce(p))
	}
	return out, nil
}

func (l *inMemoryLedger) VerifyStakeholderInTrace(_ context.Context, id uint64, phone string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.produces[id]
	if !ok {
		return false, domain.ErrProduceNotFound
	}
	for _, tx := range p.History {
		if tx.To == phone || (tx.From != nil && *tx.From == phone) {
			return true, nil
		}
	}
	return false, nil
}

// cloneProduce deep-copies a produce so callers never alias ledger state.
func cloneProduce(p *domain.Produce) domain.Produce {
	clone := *p
	clone.History = make([]domain.Transaction, len(p.History))
	copy(clone.History, p.History)
	for i, tx := range p.History {
		if tx.From != nil {
			from := *tx.From
			clone.History[i].From = &from
		}
		if tx.NewPrice != nil {
			price := *tx.NewPrice
			clone.History[i].NewPrice = &price
		}
	}
	return clone
}
