package loans

import "iter"

// BreakdownRow holds the split of a single payment.
type BreakdownRow struct {
	Index            int     `json:"index"`
	Payment          float64 `json:"payment"`
	Principal        float64 `json:"principal"`
	Interest         float64 `json:"interest"`
	RemainingBalance float64 `json:"remainingBalance"`
}

// Rows returns the full amortization schedule as a sequence. Interest for a
// period is charged on the balance before that period's payment. Every range
// over the sequence starts again from the first payment.
func Rows(p Parameters) (iter.Seq[BreakdownRow], error) {
	payment, err := PeriodicPayment(p)
	if err != nil {
		return nil, err
	}

	rate := p.PeriodicRate()
	totalPayments := p.TotalPayments()

	return func(yield func(BreakdownRow) bool) {
		balance := p.Principal
		for i := 1; i <= totalPayments; i++ {
			interest := CalculateInterestPayment(balance, rate)
			principal := payment - interest
			balance -= principal
			if i == totalPayments {
				// The final payment clears the loan; round-off is discarded.
				balance = 0
			}

			row := BreakdownRow{
				Index:            i,
				Payment:          payment,
				Principal:        principal,
				Interest:         interest,
				RemainingBalance: balance,
			}
			if !yield(row) {
				return
			}
		}
	}, nil
}

// Breakdown returns the first maxRows rows of the schedule, or the whole
// schedule when maxRows is zero or negative. A non-positive principal yields
// no rows.
func Breakdown(p Parameters, maxRows int) ([]BreakdownRow, error) {
	if p.Principal <= 0 {
		return []BreakdownRow{}, nil
	}

	seq, err := Rows(p)
	if err != nil {
		return nil, err
	}

	n := p.TotalPayments()
	if maxRows > 0 && maxRows < n {
		n = maxRows
	}

	rows := make([]BreakdownRow, 0, n)
	for row := range seq {
		if len(rows) == n {
			break
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Schedule returns every row of the amortization schedule.
func Schedule(p Parameters) ([]BreakdownRow, error) {
	return Breakdown(p, 0)
}
