package stark

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var TWO_INV = func() fr.Element {
	var two, inv fr.Element
	two.SetUint64(2)
	inv.Inverse(&two)
	return inv
}()

// foldPair evaluates one FRI folding step. Given f(x) and f(-x) for a point
// x of the current domain, the next layer at x² is
//
//	f'(x²) = (f(x)+f(-x))/2 + α·(f(x)-f(-x))/(2x)
//
// so each fold halves the domain and the degree bound.
func foldPair(low, high, x, alpha *fr.Element) fr.Element {
	var even, odd, xinv, out fr.Element
	even.Add(low, high).Mul(&even, &TWO_INV)
	xinv.Inverse(x)
	odd.Sub(low, high).Mul(&odd, &TWO_INV).Mul(&odd, &xinv).Mul(&odd, alpha)
	out.Add(&even, &odd)
	return out
}
