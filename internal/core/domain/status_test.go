package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allContractStatuses = []ContractStatus{
	ContractPendingApproval,
	ContractPendingPayment,
	ContractActive,
	ContractCancelled,
	ContractCompleted,
}

func TestContractTransitions(t *testing.T) {
	allowed := map[ContractStatus]map[ContractStatus]bool{
		ContractPendingApproval: {ContractPendingPayment: true, ContractCancelled: true},
		ContractPendingPayment:  {ContractActive: true, ContractCancelled: true},
		ContractActive:          {ContractCompleted: true},
	}

	for _, from := range allContractStatuses {
		for _, to := range allContractStatuses {
			assert.Equal(t, allowed[from][to], from.CanTransition(to),
				"%s -> %s", from, to)
		}
	}
}

func TestContractCancelledNeverReachableFromActive(t *testing.T) {
	assert.False(t, ContractActive.CanTransition(ContractCancelled))
	assert.False(t, ContractCompleted.CanTransition(ContractCancelled))
}

func TestContractTerminalStates(t *testing.T) {
	assert.True(t, ContractCancelled.Terminal())
	assert.True(t, ContractCompleted.Terminal())
	assert.False(t, ContractPendingApproval.Terminal())
	assert.False(t, ContractPendingPayment.Terminal())
	assert.False(t, ContractActive.Terminal())
}

func TestPaymentTransitions(t *testing.T) {
	all := []PaymentStatus{PaymentPending, PaymentReported, PaymentConfirmed, PaymentOverdue}
	allowed := map[PaymentStatus]map[PaymentStatus]bool{
		PaymentPending:  {PaymentReported: true, PaymentOverdue: true},
		PaymentReported: {PaymentConfirmed: true, PaymentOverdue: true, PaymentPending: true},
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[from][to], from.CanTransition(to),
				"%s -> %s", from, to)
		}
	}

	assert.True(t, PaymentConfirmed.Terminal())
	assert.True(t, PaymentOverdue.Terminal())
}

func TestApplicationTransitions(t *testing.T) {
	assert.True(t, ApplicationApplied.CanTransition(ApplicationAccepted))
	assert.True(t, ApplicationApplied.CanTransition(ApplicationUnderReview))
	assert.True(t, ApplicationUnderReview.CanTransition(ApplicationRejected))
	assert.False(t, ApplicationAccepted.CanTransition(ApplicationRejected))
	assert.False(t, ApplicationRejected.CanTransition(ApplicationApplied))

	assert.False(t, ApplicationApplied.Terminal())
	assert.False(t, ApplicationUnderReview.Terminal())
	assert.True(t, ApplicationAccepted.Terminal())
	assert.True(t, ApplicationRejected.Terminal())
	assert.True(t, ApplicationWithdrawn.Terminal())
}

func TestPenaltyTransitions(t *testing.T) {
	assert.True(t, PenaltyActive.CanTransition(PenaltyAppealSubmitted))
	assert.True(t, PenaltyActive.CanTransition(PenaltyResolved))
	assert.True(t, PenaltyAppealSubmitted.CanTransition(PenaltyResolved))
	assert.False(t, PenaltyResolved.CanTransition(PenaltyActive))
	assert.False(t, PenaltyAppealSubmitted.CanTransition(PenaltyActive))
	assert.True(t, PenaltyResolved.Terminal())
}
