package service

import (
	"context"
	"testing"

	"github.com/agritrace/produce-chain/internal/core/domain"
	"github.com/agritrace/produce-chain/internal/core/ports"
	"github.com/agritrace/produce-chain/internal/infrastructure/ledger"
	"github.com/agritrace/produce-chain/pkg/logger"
)

const (
	farmerPhone      = "9000000001"
	distributorPhone = "9000000002"
	retailerPhone    = "9000000003"
)

func newTestCustodyService() (*CustodyService, *stubIdentityRepo) {
	identities := newStubIdentityRepo()
	identities.seed(farmerPhone, domain.RoleFarmer)
	identities.seed(distributorPhone, domain.RoleDistributor)
	identities.seed(retailerPhone, domain.RoleRetailer)

	svc := NewCustodyService(ledger.NewInMemory(), identities, nil, logger.Discard())
	return svc, identities
}

func claimsFor(phone string, role domain.Role) ports.Claims {
	return ports.Claims{Phone: phone, Role: role}
}

func registerWheat(t *testing.T, svc *CustodyService) uint64 {
	t.Helper()
	id, err := svc.RegisterProduce(context.Background(), ports.RegisterProduceInput{
		Caller:      claimsFor(farmerPhone, domain.RoleFarmer),
		ProduceType: "Wheat",
		Origin:      "X",
		Quality:     "A",
		Price:       "100",
	})
	if err != nil {
		t.Fatalf("register produce: %v", err)
	}
	return id
}

func TestCustodyService_RegisterProduce_GenesisTrace(t *testing.T) {
	svc, _ := newTestCustodyService()

	id := registerWheat(t, svc)
	if id != 1 {
		t.Fatalf("first produce id = %d, want 1", id)
	}

	trace, err := svc.Trace(context.Background(), "1")
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if len(trace.History) != 1 {
		t.Fatalf("genesis history length = %d, want 1", len(trace.History))
	}
	genesis := trace.History[0]
	if genesis.From != nil {
		t.Fatalf("genesis From = %v, want absent", *genesis.From)
	}
	if genesis.To != farmerPhone {
		t.Fatalf("genesis To = %s, want %s", genesis.To, farmerPhone)
	}
	if trace.CurrentOwner != farmerPhone {
		t.Fatalf("owner = %s, want %s", trace.CurrentOwner, farmerPhone)
	}
}

func TestCustodyService_RegisterProduce_NotFarmer(t *testing.T) {
	svc, _ := newTestCustodyService()

	_, err := svc.RegisterProduce(context.Background(), ports.RegisterProduceInput{
		Caller:      claimsFor(distributorPhone, domain.RoleDistributor),
		ProduceType: "Wheat",
		Origin:      "X",
		Quality:     "A",
		Price:       "100",
	})
	if err != domain.ErrNotFarmer {
		t.Fatalf("expected ErrNotFarmer, got %v", err)
	}
}

func TestCustodyService_RegisterProduce_InvalidPrice(t *testing.T) {
	svc, _ := newTestCustodyService()

	for price, want := range map[string]error{
		"abc":                  domain.ErrInvalidNumeric,
		"-5":                   domain.ErrInvalidNumeric,
		"18446744073709551616": domain.ErrNumericOverflow,
	} {
		_, err := svc.RegisterProduce(context.Background(), ports.RegisterProduceInput{
			Caller:      claimsFor(farmerPhone, domain.RoleFarmer),
			ProduceType: "Wheat",
			Origin:      "X",
			Quality:     "A",
			Price:       price,
		})
		if err != want {
			t.Errorf("price %q: got %v, want %v", price, err, want)
		}
	}
}

func TestCustodyService_TransferProduce_RoleOrder(t *testing.T) {
	// All nine role pairings: only farmer→distributor and
	// distributor→retailer are legal.
	pairs := []struct {
		from, to domain.Role
		legal    bool
	}{
		{domain.RoleFarmer, domain.RoleFarmer, false},
		{domain.RoleFarmer, domain.RoleDistributor, true},
		{domain.RoleFarmer, domain.RoleRetailer, false},
		{domain.RoleDistributor, domain.RoleFarmer, false},
		{domain.RoleDistributor, domain.RoleDistributor, false},
		{domain.RoleDistributor, domain.RoleRetailer, true},
		{domain.RoleRetailer, domain.RoleFarmer, false},
		{domain.RoleRetailer, domain.RoleDistributor, false},
		{domain.RoleRetailer, domain.RoleRetailer, false},
	}

	phoneByRole := map[domain.Role]string{
		domain.RoleFarmer:      farmerPhone,
		domain.RoleDistributor: distributorPhone,
		domain.RoleRetailer:    retailerPhone,
	}

	for _, p := range pairs {
		svc, _ := newTestCustodyService()
		id := registerWheat(t, svc)

		// Walk custody to the sending role first so the ownership check
		// never masks the role-order check.
		if p.from == domain.RoleDistributor || p.from == domain.RoleRetailer {
			mustTransfer(t, svc, id, farmerPhone, domain.RoleFarmer, distributorPhone)
		}
		if p.from == domain.RoleRetailer {
			mustTransfer(t, svc, id, distributorPhone, domain.RoleDistributor, retailerPhone)
		}

		err := svc.TransferProduce(context.Background(), ports.TransferProduceInput{
			Caller:   claimsFor(phoneByRole[p.from], p.from),
			ID:       domain.FormatLedgerUint(id),
			NewOwner: phoneByRole[p.to],
			Details:  "handoff",
			NewPrice: "120",
		})

		if p.legal && err != nil {
			t.Errorf("%s -> %s: unexpected error %v", p.from, p.to, err)
		}
		if !p.legal && err != domain.ErrIllegalTransfer {
			t.Errorf("%s -> %s: got %v, want ErrIllegalTransfer", p.from, p.to, err)
		}
	}
}

func mustTransfer(t *testing.T, svc *CustodyService, id uint64, fromPhone string, fromRole domain.Role, toPhone string) {
	t.Helper()
	err := svc.TransferProduce(context.Background(), ports.TransferProduceInput{
		Caller:   claimsFor(fromPhone, fromRole),
		ID:       domain.FormatLedgerUint(id),
		NewOwner: toPhone,
		Details:  "handoff",
		NewPrice: "120",
	})
	if err != nil {
		t.Fatalf("transfer %d from %s to %s: %v", id, fromPhone, toPhone, err)
	}
}

func TestCustodyService_TransferProduce_Success(t *testing.T) {
	svc, _ := newTestCustodyService()
	id := registerWheat(t, svc)

	err := svc.TransferProduce(context.Background(), ports.TransferProduceInput{
		Caller:   claimsFor(farmerPhone, domain.RoleFarmer),
		ID:       "1",
		NewOwner: distributorPhone,
		Details:  "sold at market",
		NewPrice: "120",
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	trace, err := svc.Trace(context.Background(), "1")
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if len(trace.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(trace.History))
	}
	if trace.CurrentOwner != distributorPhone {
		t.Fatalf("owner = %s, want %s", trace.CurrentOwner, distributorPhone)
	}
	if trace.Price != 120 {
		t.Fatalf("price = %d, want 120", trace.Price)
	}
	last := trace.History[1]
	if last.From == nil || *last.From != farmerPhone || last.To != distributorPhone {
		t.Fatalf("unexpected last transaction: %+v", last)
	}

	// Transfer recorded in the farmer's index.
	ids, err := svc.TransferredTraces(context.Background(), claimsFor(farmerPhone, domain.RoleFarmer))
	if err != nil {
		t.Fatalf("transferred traces: %v", err)
	}
	if len(ids) != 1 || ids[0].ID != id {
		t.Fatalf("expected transferred trace for id %d, got %+v", id, ids)
	}
}

func TestCustodyService_TransferProduce_UnknownRecipient(t *testing.T) {
	svc, _ := newTestCustodyService()
	registerWheat(t, svc)

	err := svc.TransferProduce(context.Background(), ports.TransferProduceInput{
		Caller:   claimsFor(farmerPhone, domain.RoleFarmer),
		ID:       "1",
		NewOwner: "9999999999",
		Details:  "handoff",
		NewPrice: "120",
	})
	if err != domain.ErrUnknownRecipient {
		t.Fatalf("expected ErrUnknownRecipient, got %v", err)
	}
}

func TestCustodyService_TransferProduce_InvalidNumerics(t *testing.T) {
	svc, _ := newTestCustodyService()
	registerWheat(t, svc)

	err := svc.TransferProduce(context.Background(), ports.TransferProduceInput{
		Caller:   claimsFor(farmerPhone, domain.RoleFarmer),
		ID:       "one",
		NewOwner: distributorPhone,
		Details:  "handoff",
		NewPrice: "120",
	})
	if err != domain.ErrInvalidNumeric {
		t.Fatalf("expected ErrInvalidNumeric for id, got %v", err)
	}

	err = svc.TransferProduce(context.Background(), ports.TransferProduceInput{
		Caller:   claimsFor(farmerPhone, domain.RoleFarmer),
		ID:       "1",
		NewOwner: distributorPhone,
		Details:  "handoff",
		NewPrice: "18446744073709551616",
	})
	if err != domain.ErrNumericOverflow {
		t.Fatalf("expected ErrNumericOverflow for price, got %v", err)
	}
}

func TestCustodyService_TransferProduce_LedgerRejectionNoLocalWrite(t *testing.T) {
	svc, identities := newTestCustodyService()
	registerWheat(t, svc)

	// Produce 99 does not exist on the ledger: the rejection propagates
	// verbatim and the index stays untouched.
	err := svc.TransferProduce(context.Background(), ports.TransferProduceInput{
		Caller:   claimsFor(farmerPhone, domain.RoleFarmer),
		ID:       "99",
		NewOwner: distributorPhone,
		Details:  "handoff",
		NewPrice: "120",
	})
	rejected, ok := domain.IsLedgerRejected(err)
	if !ok {
		t.Fatalf("expected ledger rejection, got %v", err)
	}
	if rejected.Reason != "produce not found" {
		t.Fatalf("reason = %q", rejected.Reason)
	}

	ids, err := identities.TransferredProduceIDs(context.Background(), farmerPhone)
	if err != nil {
		t.Fatalf("index read: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("index mutated on failed transfer: %v", ids)
	}
}

func TestCustodyService_HistoryMonotonicity(t *testing.T) {
	svc, _ := newTestCustodyService()
	id := registerWheat(t, svc)

	mustTransfer(t, svc, id, farmerPhone, domain.RoleFarmer, distributorPhone)
	mustTransfer(t, svc, id, distributorPhone, domain.RoleDistributor, retailerPhone)

	trace, err := svc.Trace(context.Background(), domain.FormatLedgerUint(id))
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	// Two transfers plus the genesis registration.
	if len(trace.History) != 3 {
		t.Fatalf("history length = %d, want 3", len(trace.History))
	}
	if trace.CurrentOwner != trace.History[len(trace.History)-1].To {
		t.Fatalf("owner %s does not match last history entry %s", trace.CurrentOwner, trace.History[len(trace.History)-1].To)
	}
}

func TestCustodyService_TransferredTraces_SkipsAbsentIDs(t *testing.T) {
	svc, identities := newTestCustodyService()
	id := registerWheat(t, svc)
	mustTransfer(t, svc, id, farmerPhone, domain.RoleFarmer, distributorPhone)

	// Simulate a stale index entry the ledger no longer knows.
	if err := identities.RecordTransfer(context.Background(), farmerPhone, 777); err != nil {
		t.Fatalf("seed stale entry: %v", err)
	}

	traces, err := svc.TransferredTraces(context.Background(), claimsFor(farmerPhone, domain.RoleFarmer))
	if err != nil {
		t.Fatalf("transferred traces: %v", err)
	}
	if len(traces) != 1 || traces[0].ID != id {
		t.Fatalf("expected only the live trace, got %+v", traces)
	}
}

func TestCustodyService_RebuildIndex_MatchesRecordedIndex(t *testing.T) {
	svc, identities := newTestCustodyService()

	first := registerWheat(t, svc)
	second, err := svc.RegisterProduce(context.Background(), ports.RegisterProduceInput{
		Caller:      claimsFor(farmerPhone, domain.RoleFarmer),
		ProduceType: "Rice",
		Origin:      "Y",
		Quality:     "B",
		Price:       "80",
	})
	if err != nil {
		t.Fatalf("register second produce: %v", err)
	}

	mustTransfer(t, svc, first, farmerPhone, domain.RoleFarmer, distributorPhone)
	mustTransfer(t, svc, second, farmerPhone, domain.RoleFarmer, distributorPhone)

	recorded, err := identities.TransferredProduceIDs(context.Background(), farmerPhone)
	if err != nil {
		t.Fatalf("index read: %v", err)
	}

	rebuilt, err := svc.RebuildIndex(context.Background(), farmerPhone)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	if len(rebuilt) != len(recorded) {
		t.Fatalf("rebuilt %v != recorded %v", rebuilt, recorded)
	}
	recordedSet := make(map[uint64]struct{}, len(recorded))
	for _, id := range recorded {
		recordedSet[id] = struct{}{}
	}
	for _, id := range rebuilt {
		if _, ok := recordedSet[id]; !ok {
			t.Fatalf("rebuilt set %v differs from recorded %v", rebuilt, recorded)
		}
	}
}

func TestCustodyService_VerifyStakeholder(t *testing.T) {
	svc, _ := newTestCustodyService()
	id := registerWheat(t, svc)
	mustTransfer(t, svc, id, farmerPhone, domain.RoleFarmer, distributorPhone)

	for phone, want := range map[string]bool{
		farmerPhone:      true,
		distributorPhone: true,
		retailerPhone:    false,
	} {
		present, err := svc.VerifyStakeholder(context.Background(), domain.FormatLedgerUint(id), phone)
		if err != nil {
			t.Fatalf("verify stakeholder: %v", err)
		}
		if present != want {
			t.Errorf("stakeholder %s = %v, want %v", phone, present, want)
		}
	}
}

func TestCustodyService_ProducesByOwner(t *testing.T) {
	svc, _ := newTestCustodyService()
	id := registerWheat(t, svc)

	owned, err := svc.ProducesByOwner(context.Background(), claimsFor(farmerPhone, domain.RoleFarmer))
	if err != nil {
		t.Fatalf("produces by owner: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != id {
		t.Fatalf("expected produce %d, got %+v", id, owned)
	}

	mustTransfer(t, svc, id, farmerPhone, domain.RoleFarmer, distributorPhone)

	owned, err = svc.ProducesByOwner(context.Background(), claimsFor(farmerPhone, domain.RoleFarmer))
	if err != nil {
		t.Fatalf("produces by owner after transfer: %v", err)
	}
	if len(owned) != 0 {
		t.Fatalf("farmer should own nothing after transfer, got %+v", owned)
	}
}
