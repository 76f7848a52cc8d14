package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"oiltrading/adapters/memory"
	"oiltrading/core/formula"
	"oiltrading/core/marketdata"
	"oiltrading/core/money"
	"oiltrading/core/pricing"
	"oiltrading/core/quantity"
	"oiltrading/core/settlement"
	"oiltrading/internal/errors"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(d int) time.Time {
	return time.Date(2026, 7, d, 0, 0, 0, 0, time.UTC)
}

func brentReader() marketdata.Reader {
	return marketdata.NewStaticReader(map[string]marketdata.Series{
		"BRENT": {
			{ProductCode: "BRENT", Date: day(1), Value: dec("80.0"), Currency: "USD", Unit: "BBL"},
			{ProductCode: "BRENT", Date: day(2), Value: dec("82.0"), Currency: "USD", Unit: "BBL"},
			{ProductCode: "BRENT", Date: day(3), Value: dec("81.0"), Currency: "USD", Unit: "BBL"},
		},
	})
}

func newTestEngine(store settlement.Store) *Engine {
	return New(brentReader(), store, pricing.NewEvaluator(), Config{DefaultCurrency: "USD"})
}

func specWithPeriod(t *testing.T, text string) formula.Specification {
	t.Helper()
	spec, err := formula.Parse(text).SetPricingPeriod(day(1), day(31))
	if err != nil {
		t.Fatalf("SetPricingPeriod failed: %v", err)
	}
	return spec
}

func TestRecalculateEndToEnd(t *testing.T) {
	store := memory.NewSettlementStore()
	eng := newTestEngine(store)

	s, err := settlement.New("CTR-2026-001/LOAD-1", settlement.AmendmentInitial,
		quantity.New(dec("10000"), quantity.MT))
	if err != nil {
		t.Fatalf("settlement.New failed: %v", err)
	}
	if err := store.Create(context.Background(), s); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := eng.Recalculate(context.Background(), RecalculateRequest{
		SettlementID: s.ID(),
		Spec:         specWithPeriod(t, "AVG(BRENT) + 5.00 USD/MT"),
	})
	if err != nil {
		t.Fatalf("Recalculate failed: %v", err)
	}

	if got.BenchmarkPrice().String() != "86" {
		t.Errorf("benchmark price = %s, want 86", got.BenchmarkPrice())
	}
	if got.BenchmarkAmount().Amount().String() != "860000" {
		t.Errorf("amount = %s, want 860000", got.BenchmarkAmount().Amount())
	}
	if got.BenchmarkAmount().Currency() != "USD" {
		t.Errorf("currency = %s, want USD", got.BenchmarkAmount().Currency())
	}
	if got.Status() != settlement.StatusCalculated {
		t.Errorf("status = %s, want CALCULATED", got.Status())
	}
	if got.Version() != 2 {
		t.Errorf("version = %d, want 2", got.Version())
	}
}

func TestRecalculateRefusesFinalized(t *testing.T) {
	store := memory.NewSettlementStore()
	eng := newTestEngine(store)

	s, _ := settlement.New("CTR-2026-002", settlement.AmendmentInitial,
		quantity.New(dec("5000"), quantity.MT))
	_ = store.Create(context.Background(), s)

	_ = s.ApplyCalculation(dec("86"), mustUSD("430000"), quantity.ActualMeasuredQuantities)
	_ = s.Transition(settlement.StatusReviewed)
	_ = s.Transition(settlement.StatusApproved)
	if err := s.Finalize("ops", time.Now()); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	_ = store.Update(context.Background(), s)

	_, err := eng.Recalculate(context.Background(), RecalculateRequest{
		SettlementID: s.ID(),
		Spec:         specWithPeriod(t, "AVG(BRENT)"),
	})
	if !errors.IsType(err, errors.TypeState) {
		t.Errorf("expected state violation, got %v", err)
	}
}

func TestRecalculateRequiresPricingPeriod(t *testing.T) {
	store := memory.NewSettlementStore()
	eng := newTestEngine(store)

	s, _ := settlement.New("CTR-2026-003", settlement.AmendmentInitial,
		quantity.New(dec("5000"), quantity.MT))
	_ = store.Create(context.Background(), s)

	_, err := eng.Recalculate(context.Background(), RecalculateRequest{
		SettlementID: s.ID(),
		Spec:         formula.Parse("AVG(BRENT)"),
	})
	if !errors.IsType(err, errors.TypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestRecalculateMissingIndexData(t *testing.T) {
	store := memory.NewSettlementStore()
	eng := newTestEngine(store)

	s, _ := settlement.New("CTR-2026-004", settlement.AmendmentInitial,
		quantity.New(dec("5000"), quantity.MT))
	_ = store.Create(context.Background(), s)

	_, err := eng.Recalculate(context.Background(), RecalculateRequest{
		SettlementID: s.ID(),
		Spec:         specWithPeriod(t, "AVG(DUBAI)"),
	})
	if !errors.IsType(err, errors.TypeDataUnavailable) {
		t.Errorf("expected data-unavailable error, got %v", err)
	}
}

func TestRecalculateMixedUnitContractualConversion(t *testing.T) {
	store := memory.NewSettlementStore()
	eng := newTestEngine(store)

	// Settlement measured in MT, index quoted per BBL, contractual
	// ratio 1 MT : 7.3 BBL.
	s, _ := settlement.New("CTR-2026-005", settlement.AmendmentInitial,
		quantity.New(dec("1000"), quantity.MT))
	_ = store.Create(context.Background(), s)

	spec, err := formula.NewMixedUnit("BRENT", formula.AggAVG, quantity.BBL, nil, false,
		quantity.MT, quantity.ContractualConversion, dec("7.3"))
	if err != nil {
		t.Fatalf("NewMixedUnit failed: %v", err)
	}
	spec, err = spec.SetPricingPeriod(day(1), day(31))
	if err != nil {
		t.Fatalf("SetPricingPeriod failed: %v", err)
	}

	got, err := eng.Recalculate(context.Background(), RecalculateRequest{
		SettlementID: s.ID(),
		Spec:         spec,
	})
	if err != nil {
		t.Fatalf("Recalculate failed: %v", err)
	}

	// avg 81 per BBL x 7300 BBL
	if got.BenchmarkAmount().Amount().String() != "591300" {
		t.Errorf("amount = %s, want 591300", got.BenchmarkAmount().Amount())
	}
	if got.ModeUsed() != quantity.ContractualConversion {
		t.Errorf("mode = %s, want contractual conversion", got.ModeUsed())
	}
}

func TestStaleWriteSurfacesConflict(t *testing.T) {
	store := memory.NewSettlementStore()

	s, _ := settlement.New("CTR-2026-006", settlement.AmendmentInitial,
		quantity.New(dec("1000"), quantity.MT))
	_ = store.Create(context.Background(), s)

	// A concurrent writer bumps the stored version behind our back.
	stale := settlement.Rehydrate(s.ID(), s.ContractRef(), s.AmendmentType(), s.Quantity(),
		dec("0"), mustUSD("0"), mustUSD("0"), quantity.ActualMeasuredQuantities,
		settlement.StatusDraft, false, time.Time{}, "", 0, s.CreatedAt())

	if err := store.Update(context.Background(), s); err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	if err := store.Update(context.Background(), stale); !errors.IsType(err, errors.TypeConflict) {
		t.Errorf("expected concurrency conflict, got %v", err)
	}
}

func mustUSD(amount string) money.Money {
	return money.MustNew(dec(amount), "USD")
}
