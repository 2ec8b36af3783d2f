package service

import (
	"context"
	"sync"

	"github.com/agritrace/produce-chain/internal/core/domain"
)

// stubIdentityRepo is an in-memory IdentityRepository for service tests.
type stubIdentityRepo struct {
	mu         sync.Mutex
	identities map[string]*domain.Identity
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{identities: make(map[string]*domain.Identity)}
}

func cloneIdentity(id *domain.Identity) *domain.Identity {
	if id == nil {
		return nil
	}
	clone := *id
	clone.TransferredProduceIDs = append([]uint64(nil), id.TransferredProduceIDs...)
	return &clone
}

func (r *stubIdentityRepo) FindByPhone(_ context.Context, phone string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.identities[phone]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	return cloneIdentity(identity), nil
}

func (r *stubIdentityRepo) Create(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.identities[identity.Phone]; exists {
		return nil, domain.ErrIdentityExists
	}
	r.identities[identity.Phone] = cloneIdentity(identity)
	return cloneIdentity(identity), nil
}

func (r *stubIdentityRepo) RecordTransfer(_ context.Context, phone string, produceID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.identities[phone]
	if !ok {
		return domain.ErrIdentityNotFound
	}
	for _, id := range identity.TransferredProduceIDs {
		if id == produceID {
			return nil
		}
	}
	identity.TransferredProduceIDs = append(identity.TransferredProduceIDs, produceID)
	return nil
}

func (r *stubIdentityRepo) TransferredProduceIDs(_ context.Context, phone string) ([]uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.identities[phone]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	return append([]uint64(nil), identity.TransferredProduceIDs...), nil
}

func (r *stubIdentityRepo) ReplaceTransferIndex(_ context.Context, phone string, produceIDs []uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.identities[phone]
	if !ok {
		return domain.ErrIdentityNotFound
	}
	identity.TransferredProduceIDs = append([]uint64(nil), produceIDs...)
	return nil
}

// seed inserts an identity directly, bypassing Create.
func (r *stubIdentityRepo) seed(phone string, role domain.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.identities[phone] = &domain.Identity{Phone: phone, Role: role}
}

// stubChallengeStore is an in-memory ChallengeStore with the same atomic
// take-once guarantee the redis implementation provides via GETDEL.
type stubChallengeStore struct {
	mu         sync.Mutex
	challenges map[string]domain.Challenge
}

func newStubChallengeStore() *stubChallengeStore {
	return &stubChallengeStore{challenges: make(map[string]domain.Challenge)}
}

func (s *stubChallengeStore) Put(_ context.Context, challenge domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[challenge.Phone] = challenge
	return nil
}

func (s *stubChallengeStore) Take(_ context.Context, phone string) (domain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	challenge, ok := s.challenges[phone]
	if !ok {
		return domain.Challenge{}, domain.ErrNoActiveChallenge
	}
	delete(s.challenges, phone)
	return challenge, nil
}

func (s *stubChallengeStore) peek(phone string) (domain.Challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	challenge, ok := s.challenges[phone]
	return challenge, ok
}

// stubNotifier records deliveries and can be told to fail.
type stubNotifier struct {
	mu        sync.Mutex
	delivered []string
	failWith  error
}

func (n *stubNotifier) Deliver(_ context.Context, phone, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failWith != nil {
		return n.failWith
	}
	n.delivered = append(n.delivered, phone+": "+message)
	return nil
}

func (n *stubNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.delivered)
}
