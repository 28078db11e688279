package groth16

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// PrecomputeAlphaBeta serializes the pairing e(alpha, beta). The term only
// depends on the key, so it is computed once at registration and reused by
// every verification against this key.
func (me *VerifyingKey) PrecomputeAlphaBeta() ([]byte, error) {
	ab, err := bn254.Pair([]bn254.G1Affine{me.Alpha}, []bn254.G2Affine{me.Beta})
	if err != nil {
		return nil, err
	}
	b := ab.Bytes()
	return b[:], nil
}

// Verify checks e(A,B) = e(alpha,beta)·e(L,gamma)·e(C,delta) with
// L = ic[0] + Σ inputᵢ·ic[i+1]. An invalid proof point or a failed pairing
// identity yields false, not an error. When precomputed holds a serialized
// e(alpha,beta) the four-pairing product is split so that term is reused.
func (me *VerifyingKey) Verify(proof *Proof, inputs []fr.Element, precomputed []byte) (bool, error) {
	if len(inputs) != me.NbPublic() {
		return false, fmt.Errorf("want %d public inputs, got %d", me.NbPublic(), len(inputs))
	}
	if !proof.wellFormed() {
		return false, nil
	}
	var l bn254.G1Affine
	scalars := make([]fr.Element, len(me.IC))
	scalars[0].SetOne()
	copy(scalars[1:], inputs)
	if _, err := l.MultiExp(me.IC, scalars, ecc.MultiExpConfig{}); err != nil {
		return false, err
	}
	if len(precomputed) == 0 {
		var a bn254.G1Affine
		a.Neg(&proof.A)
		return bn254.PairingCheck(
			[]bn254.G1Affine{a, me.Alpha, l, proof.C},
			[]bn254.G2Affine{proof.B, me.Beta, me.Gamma, me.Delta},
		)
	}
	var ab bn254.GT
	if err := ab.SetBytes(precomputed); err != nil {
		return false, err
	}
	lhs, err := bn254.Pair([]bn254.G1Affine{proof.A}, []bn254.G2Affine{proof.B})
	if err != nil {
		return false, err
	}
	rhs, err := bn254.Pair([]bn254.G1Affine{l, proof.C}, []bn254.G2Affine{me.Gamma, me.Delta})
	if err != nil {
		return false, err
	}
	rhs.Mul(&rhs, &ab)
	return lhs.Equal(&rhs), nil
}
