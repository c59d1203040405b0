package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFinancials(t *testing.T) {
	tests := []struct {
		name      string
		dailyWage int64
		workDays  int
		wantTotal int64
		wantFee   int64
	}{
		{name: "seed fixture", dailyWage: 25000, workDays: 30, wantTotal: 750000, wantFee: 300000},
		{name: "one day", dailyWage: 18000, workDays: 1, wantTotal: 18000, wantFee: 7200},
		{name: "fee rounds down below half", dailyWage: 3, workDays: 1, wantTotal: 3, wantFee: 1},     // 1.2
		{name: "fee rounds up above half", dailyWage: 9, workDays: 1, wantTotal: 9, wantFee: 4},       // 3.6
		{name: "sub-unit fee rounds to zero", dailyWage: 1, workDays: 1, wantTotal: 1, wantFee: 0},    // 0.4
		{name: "whole-unit fee kept exact", dailyWage: 5, workDays: 11, wantTotal: 55, wantFee: 22},   // 22.0
		{name: "large contract", dailyWage: 40000, workDays: 90, wantTotal: 3600000, wantFee: 1440000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, fee, err := ComputeFinancials(tt.dailyWage, tt.workDays)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			assert.Equal(t, tt.wantFee, fee)
		})
	}
}

func TestComputeFinancialsRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name      string
		dailyWage int64
		workDays  int
	}{
		{"zero wage", 0, 10},
		{"negative wage", -100, 10},
		{"zero days", 25000, 0},
		{"negative days", 25000, -1},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ComputeFinancials(tt.dailyWage, tt.workDays)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestPaymentDeadlineFor(t *testing.T) {
	start := time.Date(2026, time.October, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.October, 7, 0, 0, 0, 0, time.UTC), PaymentDeadlineFor(start))
}

func TestEngagementEndFor(t *testing.T) {
	start := time.Date(2026, time.October, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.November, 9, 0, 0, 0, 0, time.UTC), EngagementEndFor(start, 30))
}
