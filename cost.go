package uzkv

// CostParams approximate verification cost in gas-equivalent units.
type CostParams struct {
	Base     uint64
	PerInput uint64
	PerByte  uint64
}

var COST_MODEL = map[Scheme]CostParams{
	Groth16: {Base: 250_000, PerInput: 40_000},
	Plonk:   {Base: 350_000, PerInput: 10_000},
	Stark:   {Base: 200_000, PerInput: 5_000, PerByte: 10},
}

// EstimateCost prices a single verification. Unknown schemes cost zero.
func EstimateCost(scheme Scheme, nbInputs, proofBytes int) uint64 {
	p, ok := COST_MODEL[scheme]
	if !ok {
		return 0
	}
	return p.Base + p.PerInput*uint64(nbInputs) + p.PerByte*uint64(proofBytes)
}

// EstimateBatchCost sums the individual estimates and applies the batching
// discount: 5% per proof beyond the first, capped at 30%.
func EstimateBatchCost(schemes []Scheme, nbInputs []int, proofBytes []int) uint64 {
	var total uint64
	for i := range schemes {
		total += EstimateCost(schemes[i], nbInputs[i], proofBytes[i])
	}
	if len(schemes) < 2 {
		return total
	}
	discount := uint64(5 * (len(schemes) - 1))
	if discount > 30 {
		discount = 30
	}
	return total * (100 - discount) / 100
}
