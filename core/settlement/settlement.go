package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"oiltrading/core/money"
	"oiltrading/core/quantity"
	"oiltrading/internal/errors"
)

// Settlement is the aggregate root for one contract-event settlement.
// It is mutated through recalculation while non-finalized and becomes
// immutable once finalized. The version field is the optimistic
// concurrency token compared by the store on write.
type Settlement struct {
	id            uuid.UUID
	contractRef   string
	amendmentType AmendmentType

	qty             quantity.Quantity
	benchmarkPrice  decimal.Decimal
	benchmarkAmount money.Money
	charges         money.Money
	modeUsed        quantity.CalculationMode

	status      Status
	isFinalized bool
	finalizedAt time.Time
	finalizedBy string
	cancelInfo  string

	version   int
	createdAt time.Time
}

// New creates a settlement in Draft for a contract event.
func New(contractRef string, amendmentType AmendmentType, qty quantity.Quantity) (*Settlement, error) {
	if contractRef == "" {
		return nil, errors.Validation("contract reference is required")
	}
	return &Settlement{
		id:            uuid.New(),
		contractRef:   contractRef,
		amendmentType: amendmentType,
		qty:           qty,
		status:        StatusDraft,
		createdAt:     time.Now().UTC(),
	}, nil
}

// Rehydrate rebuilds a settlement from persisted state. Intended for
// stores only.
func Rehydrate(
	id uuid.UUID,
	contractRef string,
	amendmentType AmendmentType,
	qty quantity.Quantity,
	benchmarkPrice decimal.Decimal,
	benchmarkAmount money.Money,
	charges money.Money,
	modeUsed quantity.CalculationMode,
	status Status,
	isFinalized bool,
	finalizedAt time.Time,
	finalizedBy string,
	version int,
	createdAt time.Time,
) *Settlement {
	return &Settlement{
		id:              id,
		contractRef:     contractRef,
		amendmentType:   amendmentType,
		qty:             qty,
		benchmarkPrice:  benchmarkPrice,
		benchmarkAmount: benchmarkAmount,
		charges:         charges,
		modeUsed:        modeUsed,
		status:          status,
		isFinalized:     isFinalized,
		finalizedAt:     finalizedAt,
		finalizedBy:     finalizedBy,
		version:         version,
		createdAt:       createdAt,
	}
}

// ID returns the settlement identity.
func (s *Settlement) ID() uuid.UUID { return s.id }

// ContractRef returns the contract event reference.
func (s *Settlement) ContractRef() string { return s.contractRef }

// AmendmentType returns why this settlement instance exists.
func (s *Settlement) AmendmentType() AmendmentType { return s.amendmentType }

// Quantity returns the calculation quantity.
func (s *Settlement) Quantity() quantity.Quantity { return s.qty }

// BenchmarkPrice returns the evaluated benchmark price.
func (s *Settlement) BenchmarkPrice() decimal.Decimal { return s.benchmarkPrice }

// BenchmarkAmount returns the computed settlement amount.
func (s *Settlement) BenchmarkAmount() money.Money { return s.benchmarkAmount }

// Charges returns additional charges folded into the settlement.
func (s *Settlement) Charges() money.Money { return s.charges }

// ModeUsed returns the quantity calculation mode recorded at the last
// recalculation.
func (s *Settlement) ModeUsed() quantity.CalculationMode { return s.modeUsed }

// Status returns the lifecycle status.
func (s *Settlement) Status() Status { return s.status }

// IsFinalized reports whether the settlement is immutable.
func (s *Settlement) IsFinalized() bool { return s.isFinalized }

// FinalizedAt returns the finalization timestamp.
func (s *Settlement) FinalizedAt() time.Time { return s.finalizedAt }

// FinalizedBy returns who finalized the settlement.
func (s *Settlement) FinalizedBy() string { return s.finalizedBy }

// Version returns the optimistic concurrency token.
func (s *Settlement) Version() int { return s.version }

// CreatedAt returns the creation timestamp.
func (s *Settlement) CreatedAt() time.Time { return s.createdAt }

// MarkPersisted records the version the store wrote. Intended for
// stores only.
func (s *Settlement) MarkPersisted(version int) {
	s.version = version
}

// Copy returns a detached copy of the settlement. Stores hand out
// copies so no two callers ever share a live aggregate; a stale
// caller's version stays stale.
func (s *Settlement) Copy() *Settlement {
	cp := *s
	return &cp
}

// guardMutable rejects any mutation of computed financial fields once
// the settlement is finalized.
func (s *Settlement) guardMutable() error {
	if s.isFinalized {
		return errors.State("settlement already finalized: " + s.id.String())
	}
	if s.status == StatusCancelled {
		return errors.State("settlement cancelled: " + s.id.String())
	}
	return nil
}

// ApplyCalculation records the outcome of a pricing evaluation: the
// benchmark price, the settlement amount, and which quantity mode
// produced it. Legal in any non-terminal state; the status returns to
// Calculated so review starts over.
func (s *Settlement) ApplyCalculation(benchmarkPrice decimal.Decimal, amount money.Money, mode quantity.CalculationMode) error {
	if err := s.guardMutable(); err != nil {
		return err
	}
	s.benchmarkPrice = benchmarkPrice
	s.benchmarkAmount = amount
	s.modeUsed = mode
	s.status = StatusCalculated
	return nil
}

// ApplyCharges records additional charges. Charges share the settlement
// amount's currency.
func (s *Settlement) ApplyCharges(charges money.Money) error {
	if err := s.guardMutable(); err != nil {
		return err
	}
	if !s.benchmarkAmount.IsZero() && charges.Currency() != s.benchmarkAmount.Currency() {
		return errors.Validationf("charges currency %s does not match settlement currency %s",
			charges.Currency(), s.benchmarkAmount.Currency())
	}
	s.charges = charges
	return nil
}

// TotalAmount returns benchmark amount plus charges.
func (s *Settlement) TotalAmount() (money.Money, error) {
	if s.charges.Currency() == "" || s.charges.IsZero() {
		return s.benchmarkAmount, nil
	}
	return s.benchmarkAmount.Add(s.charges)
}

// Transition moves the settlement one legal lifecycle step forward.
func (s *Settlement) Transition(to Status) error {
	if err := s.guardMutable(); err != nil {
		return err
	}
	if !CanTransition(s.status, to) {
		return errors.State("illegal transition " + string(s.status) + " -> " + string(to))
	}
	s.status = to
	return nil
}

// Finalize is the one-way terminal transition. Legal only from
// Approved; stamps the finalization audit fields.
func (s *Settlement) Finalize(by string, at time.Time) error {
	if err := s.guardMutable(); err != nil {
		return err
	}
	if s.status != StatusApproved {
		return errors.State("finalize requires approved status, have " + string(s.status))
	}
	s.isFinalized = true
	s.status = StatusFinalized
	s.finalizedAt = at
	s.finalizedBy = by
	return nil
}

// Cancel abandons the settlement from any non-finalized state.
func (s *Settlement) Cancel(reason string) error {
	if s.isFinalized {
		return errors.State("settlement already finalized: " + s.id.String())
	}
	s.status = StatusCancelled
	s.cancelInfo = reason
	return nil
}

// CancelReason returns the recorded cancellation reason.
func (s *Settlement) CancelReason() string { return s.cancelInfo }

// RequiresRecalculation reports whether pricing evaluation has not yet
// produced a usable result: the settlement is still Draft and either
// the benchmark amount or the calculation quantity is zero.
func (s *Settlement) RequiresRecalculation() bool {
	return s.status == StatusDraft && (s.benchmarkAmount.IsZero() || s.qty.IsZero())
}
