package services

import (
	"pharmatch/internal/adapters/persistence/models"
)

// Notifier is the fire-and-forget notification collaborator. It is invoked
// after a transition commits; failures are logged by the implementation and
// never roll back the underlying transition. A nil Notifier is allowed.
type Notifier interface {
	NotifyContractCreated(contract *models.Contract)
	NotifyOfferApproved(contract *models.Contract)
	NotifyOfferRejected(contract *models.Contract)
	NotifyContractActivated(contract *models.Contract)
	NotifyContractExpired(contract *models.Contract)
	NotifyContractCompleted(contract *models.Contract)
	NotifyPaymentReported(payment *models.Payment)
	NotifyPaymentConfirmed(payment *models.Payment)
	NotifyPaymentOverdue(payment *models.Payment)
	NotifyPenaltyImposed(penalty *models.Penalty)
	NotifyPenaltyResolved(penalty *models.Penalty)
}
