// Package settlement provides the settlement aggregate: the financial
// record of what is owed for a contract event, with its approval and
// finalization lifecycle.
package settlement

// Status is the settlement lifecycle state.
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusCalculated Status = "CALCULATED"
	StatusReviewed   Status = "REVIEWED"
	StatusApproved   Status = "APPROVED"
	StatusFinalized  Status = "FINALIZED"
	StatusCancelled  Status = "CANCELLED"
)

// transitions lists the legal forward steps. Finalized is reached only
// through Finalize, Cancelled through Cancel.
var transitions = map[Status][]Status{
	StatusDraft:      {StatusCalculated},
	StatusCalculated: {StatusReviewed},
	StatusReviewed:   {StatusApproved},
	StatusApproved:   {},
	StatusFinalized:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether from -> to is a legal forward step.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusFinalized || s == StatusCancelled
}

// AmendmentType classifies why a settlement instance exists. It is an
// audit trail marker, not a control-flow gate.
type AmendmentType string

const (
	AmendmentInitial          AmendmentType = "INITIAL"
	AmendmentAmendment        AmendmentType = "AMENDMENT"
	AmendmentCorrection       AmendmentType = "CORRECTION"
	AmendmentSecondaryPricing AmendmentType = "SECONDARY_PRICING"
	AmendmentFinalSettlement  AmendmentType = "FINAL_SETTLEMENT"
)
