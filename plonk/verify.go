package plonk

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/eon-protocol/uzkv/curve"
	"github.com/eon-protocol/uzkv/transcript"
)

const TRANSCRIPT_DOMAIN = "uzkv/plonk/v1"

// challenges replays the Fiat-Shamir transcript: β and γ after the wire
// commitments, α after the grand product, ζ after the quotient, v after the
// claimed evaluations, u after the opening proofs.
func (me *VerifyingKey) challenges(proof *Proof, publics []fr.Element) (beta, gamma, alpha, zeta, v, u fr.Element) {
	ts := transcript.New(TRANSCRIPT_DOMAIN)
	ts.Absorb("vk", me.digest[:])
	for i := range publics {
		ts.AbsorbFr("public", &publics[i])
	}
	ts.AbsorbG1("wire_a", &proof.A)
	ts.AbsorbG1("wire_b", &proof.B)
	ts.AbsorbG1("wire_c", &proof.C)
	beta = ts.Squeeze("beta")
	gamma = ts.Squeeze("gamma")
	ts.AbsorbG1("grand_product", &proof.Z)
	alpha = ts.Squeeze("alpha")
	ts.AbsorbG1("quotient", &proof.T)
	zeta = ts.Squeeze("zeta")
	for _, e := range proof.Evals.list() {
		ts.AbsorbFr("eval", e)
	}
	v = ts.Squeeze("v")
	ts.AbsorbG1("opening_zeta", &proof.WZeta)
	ts.AbsorbG1("opening_zeta_omega", &proof.WZetaOmega)
	u = ts.Squeeze("u")
	return
}

// Verify checks the evaluation identity
//
//	gate(ζ) + α·perm(ζ) + α²·L₁(ζ)(z̄-1) == Z_H(ζ)·t̄
//
// against the claimed evaluations, then checks that those evaluations are
// the real ones: the thirteen ζ-opened commitments are folded with powers of
// v and verified together with the ζω opening of the grand product in a
// single two-pairing KZG check combined by u.
func (me *VerifyingKey) Verify(proof *Proof, publics []fr.Element) (bool, error) {
	if uint64(len(publics)) != me.NbPublic {
		return false, fmt.Errorf("want %d public inputs, got %d", me.NbPublic, len(publics))
	}
	for _, p := range []*bn254.G1Affine{&proof.A, &proof.B, &proof.C, &proof.Z, &proof.T, &proof.WZeta, &proof.WZetaOmega} {
		if !curve.ValidG1(p) {
			return false, nil
		}
	}
	beta, gamma, alpha, zeta, v, u := me.challenges(proof, publics)

	one := fr.One()
	var bi big.Int
	var zh, l1, tmp fr.Element
	zh.Exp(zeta, new(big.Int).SetUint64(me.Size))
	zh.Sub(&zh, &one) // ζⁿ-1
	if zh.IsZero() {
		return false, nil
	}
	l1.Sub(&zeta, &one).Inverse(&l1).Mul(&l1, &zh).Mul(&l1, &me.sizeInv) // 1/n · (ζⁿ-1)/(ζ-1)

	// PI(ζ) = -Σ pubᵢ·Lᵢ(ζ), Lᵢ(ζ) = ωⁱ/n · (ζⁿ-1)/(ζ-ωⁱ)
	var pi, w fr.Element
	w.SetOne()
	for i := range publics {
		tmp.Sub(&zeta, &w)
		if tmp.IsZero() {
			return false, nil
		}
		tmp.Inverse(&tmp).Mul(&tmp, &zh).Mul(&tmp, &me.sizeInv).Mul(&tmp, &w).Mul(&tmp, &publics[i])
		pi.Sub(&pi, &tmp)
		w.Mul(&w, &me.generator)
	}

	e := &proof.Evals

	var gate fr.Element
	gate.Mul(&e.Ql, &e.A)
	gate.Add(&gate, tmp.Mul(&e.Qr, &e.B))
	gate.Add(&gate, tmp.Mul(&e.Qo, &e.C))
	gate.Add(&gate, tmp.Mul(&e.Qm, &e.A).Mul(&tmp, &e.B))
	gate.Add(&gate, &e.Qc)
	gate.Add(&gate, &pi)

	var f1, f2, f3, left, right, perm fr.Element
	f1.Mul(&beta, &zeta).Add(&f1, &e.A).Add(&f1, &gamma)
	f2.Mul(&beta, &me.K1).Mul(&f2, &zeta).Add(&f2, &e.B).Add(&f2, &gamma)
	f3.Mul(&beta, &me.K2).Mul(&f3, &zeta).Add(&f3, &e.C).Add(&f3, &gamma)
	left.Mul(&f1, &f2).Mul(&left, &f3).Mul(&left, &e.Z)
	f1.Mul(&beta, &e.S1).Add(&f1, &e.A).Add(&f1, &gamma)
	f2.Mul(&beta, &e.S2).Add(&f2, &e.B).Add(&f2, &gamma)
	f3.Mul(&beta, &e.S3).Add(&f3, &e.C).Add(&f3, &gamma)
	right.Mul(&f1, &f2).Mul(&right, &f3).Mul(&right, &e.ZOmega)
	perm.Sub(&left, &right)

	var lhs, rhs fr.Element
	lhs.Sub(&e.Z, &one).Mul(&lhs, &l1).Mul(&lhs, &alpha)
	lhs.Add(&lhs, &perm).Mul(&lhs, &alpha)
	lhs.Add(&lhs, &gate)
	rhs.Mul(&zh, &e.T)
	if !lhs.Equal(&rhs) {
		return false, nil
	}

	// fold the thirteen ζ-opened commitments and evaluations with powers of v
	digests := []bn254.G1Affine{
		proof.A, proof.B, proof.C,
		me.Ql, me.Qr, me.Qo, me.Qm, me.Qc,
		me.S[0], me.S[1], me.S[2],
		proof.Z, proof.T,
	}
	evals := []fr.Element{
		e.A, e.B, e.C,
		e.Ql, e.Qr, e.Qo, e.Qm, e.Qc,
		e.S1, e.S2, e.S3,
		e.Z, e.T,
	}
	vs := make([]fr.Element, len(digests))
	vs[0].SetOne()
	for i := 1; i < len(vs); i++ {
		vs[i].Mul(&vs[i-1], &v)
	}
	var foldDigest bn254.G1Affine
	if _, err := foldDigest.MultiExp(digests, vs, ecc.MultiExpConfig{}); err != nil {
		return false, err
	}
	var foldEval fr.Element
	for i := range evals {
		foldEval.Add(&foldEval, tmp.Mul(&evals[i], &vs[i]))
	}

	// combine the ζ and ζω openings with u into one check:
	//   e(F, [1]₂)·e(-W, [τ]₂) == 1
	//   F = D - y·[1]₁ + ζ·Wζ + u·(Z - z̄ω·[1]₁ + ζω·Wζω)
	//   W = Wζ + u·Wζω
	var zetaOmega fr.Element
	zetaOmega.Mul(&zeta, &me.generator)

	var f, g, fo, wc bn254.G1Affine
	f.ScalarMultiplication(&proof.WZeta, zeta.BigInt(&bi))
	f.Add(&f, &foldDigest)
	g.ScalarMultiplication(&me.Kzg.G1, foldEval.BigInt(&bi))
	f.Sub(&f, &g)

	fo.ScalarMultiplication(&proof.WZetaOmega, zetaOmega.BigInt(&bi))
	fo.Add(&fo, &proof.Z)
	g.ScalarMultiplication(&me.Kzg.G1, e.ZOmega.BigInt(&bi))
	fo.Sub(&fo, &g)
	fo.ScalarMultiplication(&fo, u.BigInt(&bi))
	f.Add(&f, &fo)

	wc.ScalarMultiplication(&proof.WZetaOmega, u.BigInt(&bi))
	wc.Add(&wc, &proof.WZeta)
	wc.Neg(&wc)

	return bn254.PairingCheck(
		[]bn254.G1Affine{f, wc},
		[]bn254.G2Affine{me.Kzg.G2[0], me.Kzg.G2[1]},
	)
}
