package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlatformFeeRate is the platform's share of total compensation (40%).
var PlatformFeeRate = decimal.New(4, -1)

// PaymentDeadlineOffset is how long before the initial work date the platform
// fee must be confirmed.
const PaymentDeadlineOffset = 3 * 24 * time.Hour

// ComputeFinancials derives total compensation and the platform fee from a
// posting's daily wage and desired work days. Inputs and outputs are integer
// amounts in the smallest currency unit (yen).
//
// The fee is rounded half-up: on an exact half the platform never
// under-bills. decimal.Round is half-away-from-zero, which is half-up for
// the positive amounts enforced here. At the 40% rate fee fractions are
// always multiples of 0.2, so an exact half cannot occur for integer
// inputs; the tie-break is stated for when the rate changes.
func ComputeFinancials(dailyWage int64, workDays int) (totalCompensation, platformFee int64, err error) {
	if dailyWage <= 0 || workDays <= 0 {
		return 0, 0, ErrInvalidInput
	}

	total := decimal.NewFromInt(dailyWage).Mul(decimal.NewFromInt(int64(workDays)))
	fee := total.Mul(PlatformFeeRate).Round(0)

	return total.IntPart(), fee.IntPart(), nil
}

// PaymentDeadlineFor returns the fee deadline for a contract starting on the
// given initial work date.
func PaymentDeadlineFor(initialWorkDate time.Time) time.Time {
	return initialWorkDate.Add(-PaymentDeadlineOffset)
}

// EngagementEndFor returns the day the engagement ends.
func EngagementEndFor(initialWorkDate time.Time, workDays int) time.Time {
	return initialWorkDate.AddDate(0, 0, workDays)
}
