package registry

// MaxBasisPoints is 100% expressed in basis points.
const MaxBasisPoints = 10000

// FeeSchedule holds the fee policy applied to every claim payment.
type FeeSchedule struct {
	// BaseFeeBps is the default fee rate in basis points.
	BaseFeeBps uint64
	// ReducedFeeBps applies when the payer's loyalty balance meets the threshold.
	ReducedFeeBps uint64
	// LoyaltyThreshold is the loyalty balance at which the reduced rate
	// applies; zero disables the discount.
	LoyaltyThreshold uint64
	// Collector receives the fee portion of every payment.
	Collector string
}

// ComputeFee returns the fee owed on a payment amount at the given rate.
// The division rounds down, so the fee never exceeds amount*bps/10000.
func ComputeFee(amount, bps uint64) uint64 {
	// Split to avoid overflow on amount*bps for large amounts. For
	// a = q*10000 + r: floor(a*bps/10000) == q*bps + floor(r*bps/10000).
	q := amount / MaxBasisPoints
	r := amount % MaxBasisPoints
	return q*bps + r*bps/MaxBasisPoints
}
