package stark

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/eon-protocol/uzkv/transcript"
)

const TRANSCRIPT_DOMAIN = "uzkv/stark/v1"

// Verify checks a proof against public inputs [trace[0], trace[1],
// trace[n-1]]. All query positions are derived from the Fiat-Shamir
// transcript; a proof opening any other position fails.
func (me *VerifyingKey) Verify(proof *Proof, publics []fr.Element) (bool, error) {
	if len(publics) != NbPublic {
		return false, fmt.Errorf("want %d public inputs, got %d", NbPublic, len(publics))
	}
	nq, blowup := me.Level.Params()
	n := me.TraceLen
	domainSize := me.DomainSize()
	layers := me.Layers()
	if len(proof.ConstraintQueries) != nq || len(proof.FriQueries) != nq ||
		len(proof.LayerRoots) != layers-1 {
		return false, nil
	}

	ts := transcript.New(TRANSCRIPT_DOMAIN)
	ts.Absorb("vk", me.digest[:])
	for i := range publics {
		ts.AbsorbFr("public", &publics[i])
	}
	ts.Absorb("trace_root", proof.TraceRoot[:])

	rows := make([]uint64, nq)
	for i := range rows {
		rows[i] = ts.SqueezeIndex("constraint_query", n-2)
	}
	alphas := make([]fr.Element, layers)
	alphas[0] = ts.Squeeze("fri_alpha")
	for l := 1; l < layers; l++ {
		ts.Absorb("fri_root", proof.LayerRoots[l-1][:])
		alphas[l] = ts.Squeeze("fri_alpha")
	}
	ts.AbsorbFr("fri_remainder", &proof.Remainder)
	positions := make([]uint64, nq)
	for i := range positions {
		positions[i] = ts.SqueezeIndex("fri_query", domainSize)
	}

	// the trace row i sits at index i·blowup of the extended domain
	boundaryRows := [NbPublic]uint64{0, 1, n - 1}
	for i := range proof.Boundary {
		o := &proof.Boundary[i]
		if o.Index != boundaryRows[i]*blowup || !o.Value.Equal(&publics[i]) {
			return false, nil
		}
		if !verifyPath(&proof.TraceRoot, o.Index, &o.Value, o.Path) {
			return false, nil
		}
	}

	for qi, row := range rows {
		q := &proof.ConstraintQueries[qi]
		for j := 0; j < 3; j++ {
			if q[j].Index != (row+uint64(j))*blowup {
				return false, nil
			}
			if !verifyPath(&proof.TraceRoot, q[j].Index, &q[j].Value, q[j].Path) {
				return false, nil
			}
		}
		if !transition(&q[0].Value, &q[1].Value, &q[2].Value) {
			return false, nil
		}
	}

	// generators of the successively halved evaluation domains
	gens := make([]fr.Element, layers)
	for l := range gens {
		g, err := fr.Generator(domainSize >> l)
		if err != nil {
			return false, err
		}
		gens[l] = g
	}

	roots := make([]*[32]byte, layers)
	roots[0] = &proof.TraceRoot
	for l := 1; l < layers; l++ {
		roots[l] = &proof.LayerRoots[l-1]
	}

	var bi big.Int
	for qi, idx := range positions {
		var carry fr.Element
		for l := 0; l < layers; l++ {
			size := domainSize >> l
			half := size / 2
			j := idx % half
			lo := &proof.FriQueries[qi].Layers[l].Low
			hi := &proof.FriQueries[qi].Layers[l].High
			if lo.Index != j || hi.Index != j+half {
				return false, nil
			}
			if !verifyPath(roots[l], lo.Index, &lo.Value, lo.Path) ||
				!verifyPath(roots[l], hi.Index, &hi.Value, hi.Path) {
				return false, nil
			}
			if l > 0 {
				// the previous fold must land on the committed value
				prev := lo
				if idx >= half {
					prev = hi
				}
				if !carry.Equal(&prev.Value) {
					return false, nil
				}
			}
			var x fr.Element
			x.Exp(gens[l], bi.SetUint64(j))
			carry = foldPair(&lo.Value, &hi.Value, &x, &alphas[l])
			idx = j
		}
		if !carry.Equal(&proof.Remainder) {
			return false, nil
		}
	}
	return true, nil
}
