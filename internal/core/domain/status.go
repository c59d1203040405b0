package domain

// ============================================================
// Status enums + transition tables
// ============================================================
//
// Every lifecycle status is a closed typed constant and every machine has a
// single transition table. Illegal transitions are rejected in one place
// instead of scattered conditionals.

// ApplicationStatus represents a pharmacist's application lifecycle
type ApplicationStatus string

const (
	ApplicationApplied     ApplicationStatus = "applied"
	ApplicationUnderReview ApplicationStatus = "under_review"
	ApplicationAccepted    ApplicationStatus = "accepted"
	ApplicationRejected    ApplicationStatus = "rejected"
	// ApplicationWithdrawn is historical only: withdrawal is no longer
	// offered, but old rows can still carry the status.
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationApplied:     {ApplicationUnderReview, ApplicationAccepted, ApplicationRejected},
	ApplicationUnderReview: {ApplicationAccepted, ApplicationRejected},
}

// Terminal reports whether no further transition is possible
func (s ApplicationStatus) Terminal() bool {
	return len(applicationTransitions[s]) == 0
}

// CanTransition reports whether s → to is a legal transition
func (s ApplicationStatus) CanTransition(to ApplicationStatus) bool {
	for _, next := range applicationTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// ContractStatus represents the contract lifecycle
type ContractStatus string

const (
	ContractPendingApproval ContractStatus = "pending_approval"
	ContractPendingPayment  ContractStatus = "pending_payment"
	ContractActive          ContractStatus = "active"
	ContractCancelled       ContractStatus = "cancelled"
	ContractCompleted       ContractStatus = "completed"
)

// Transitions are monotonic: cancelled is reachable only before activation,
// and an active contract can only complete.
var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractPendingApproval: {ContractPendingPayment, ContractCancelled},
	ContractPendingPayment:  {ContractActive, ContractCancelled},
	ContractActive:          {ContractCompleted},
}

func (s ContractStatus) Terminal() bool {
	return len(contractTransitions[s]) == 0
}

func (s ContractStatus) CanTransition(to ContractStatus) bool {
	for _, next := range contractTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentStatus represents the platform-fee invoice lifecycle
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentReported  PaymentStatus = "reported"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentOverdue   PaymentStatus = "overdue"
)

// A reported payment may move back to pending only through the admin
// report-reset path; confirmed and overdue are terminal.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:  {PaymentReported, PaymentOverdue},
	PaymentReported: {PaymentConfirmed, PaymentOverdue, PaymentPending},
}

func (s PaymentStatus) Terminal() bool {
	return len(paymentTransitions[s]) == 0
}

func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	for _, next := range paymentTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// PenaltyStatus represents a sanction record lifecycle
type PenaltyStatus string

const (
	PenaltyActive          PenaltyStatus = "active"
	PenaltyAppealSubmitted PenaltyStatus = "appeal_submitted"
	PenaltyResolved        PenaltyStatus = "resolved"
)

var penaltyTransitions = map[PenaltyStatus][]PenaltyStatus{
	PenaltyActive:          {PenaltyAppealSubmitted, PenaltyResolved},
	PenaltyAppealSubmitted: {PenaltyResolved},
}

func (s PenaltyStatus) Terminal() bool {
	return len(penaltyTransitions[s]) == 0
}

func (s PenaltyStatus) CanTransition(to PenaltyStatus) bool {
	for _, next := range penaltyTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// PenaltyType classifies a sanction
type PenaltyType string

const (
	PenaltyPaymentDelay      PenaltyType = "payment_delay"
	PenaltyContractViolation PenaltyType = "contract_violation"
	PenaltyOther             PenaltyType = "other"
)
