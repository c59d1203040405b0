package domain

// CanDisclose reports whether a counterparty's direct contact details
// (phone/email) may be shown for a contract in the given status. Contact
// information opens only once the platform fee is confirmed (active) and
// stays visible after completion.
func CanDisclose(status ContractStatus) bool {
	return status == ContractActive || status == ContractCompleted
}
