package model

import "math"

// MinAmount is the smallest amount the ledger accepts. Zero-amount
// operations are rejected before they reach a wallet mutation.
const MinAmount = 0.01

// Round2 fixes an amount to two decimals. Applied at every wallet
// mutation boundary so repeated splits cannot accumulate float drift.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ValidAmount reports whether v is usable as a transaction amount.
func ValidAmount(v float64) bool {
	return v >= MinAmount && !math.IsNaN(v) && !math.IsInf(v, 0)
}
