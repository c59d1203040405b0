package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanDisclose(t *testing.T) {
	want := map[ContractStatus]bool{
		ContractPendingApproval: false,
		ContractPendingPayment:  false,
		ContractActive:          true,
		ContractCancelled:       false,
		ContractCompleted:       true,
	}

	for _, status := range allContractStatuses {
		assert.Equal(t, want[status], CanDisclose(status), "status %s", status)
	}
}
