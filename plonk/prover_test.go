package plonk

// A minimal honest prover used to exercise the verifier. It works in
// coefficient form with naive polynomial arithmetic, which is fine at test
// circuit sizes.

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/consensys/gnark-crypto/ecc/bn254/kzg"
	"github.com/stretchr/testify/require"

	"github.com/eon-protocol/uzkv/transcript"
)

func polyEval(p []fr.Element, x fr.Element) fr.Element {
	var acc fr.Element
	for i := len(p) - 1; i >= 0; i-- {
		acc.Mul(&acc, &x)
		acc.Add(&acc, &p[i])
	}
	return acc
}

func polyAdd(a, b []fr.Element) []fr.Element {
	out := make([]fr.Element, max(len(a), len(b)))
	for i := range out {
		if i < len(a) {
			out[i].Add(&out[i], &a[i])
		}
		if i < len(b) {
			out[i].Add(&out[i], &b[i])
		}
	}
	return out
}

func polyScale(a []fr.Element, s fr.Element) []fr.Element {
	out := make([]fr.Element, len(a))
	for i := range a {
		out[i].Mul(&a[i], &s)
	}
	return out
}

func polyMul(a, b []fr.Element) []fr.Element {
	out := make([]fr.Element, len(a)+len(b)-1)
	var t fr.Element
	for i := range a {
		for j := range b {
			t.Mul(&a[i], &b[j])
			out[i+j].Add(&out[i+j], &t)
		}
	}
	return out
}

// divByVanishing divides p by Xⁿ-1 and reports whether the division was
// exact.
func divByVanishing(p []fr.Element, n uint64) ([]fr.Element, bool) {
	c := append([]fr.Element(nil), p...)
	if uint64(len(c)) <= n {
		c = append(c, make([]fr.Element, n+1-uint64(len(c)))...)
	}
	q := make([]fr.Element, uint64(len(c))-n)
	for i := uint64(len(c)) - 1; i >= n; i-- {
		q[i-n] = c[i]
		c[i-n].Add(&c[i-n], &c[i])
		c[i].SetZero()
	}
	for i := uint64(0); i < n; i++ {
		if !c[i].IsZero() {
			return q, false
		}
	}
	return q, true
}

// interpolate returns the coefficients of the polynomial taking the given
// values over the domain.
func interpolate(domain *fft.Domain, values []fr.Element) []fr.Element {
	c := append([]fr.Element(nil), values...)
	domain.FFTInverse(c, fft.DIF)
	fft.BitReverse(c)
	return c
}

// shiftOmega maps p(X) to p(ωX).
func shiftOmega(p []fr.Element, omega fr.Element) []fr.Element {
	out := make([]fr.Element, len(p))
	pow := fr.One()
	for i := range p {
		out[i].Mul(&p[i], &pow)
		pow.Mul(&pow, &omega)
	}
	return out
}

// testCircuit is an 8-row circuit with one public input x and the single
// constraint a·b = x: row 0 carries the public input, row 1 the
// multiplication gate, and a copy constraint ties the product back to the
// public wire.
type testCircuit struct {
	vk     *VerifyingKey
	pk     kzg.ProvingKey
	domain *fft.Domain
	n      uint64
	omega  fr.Element

	ql, qr, qo, qm, qc []fr.Element    // coefficient form
	sigma              [3][]fr.Element // permutation value columns
	s                  [3][]fr.Element // coefficient form
}

func newTestCircuit(t *testing.T) *testCircuit {
	t.Helper()
	n := uint64(8)
	domain := fft.NewDomain(n)
	omega := domain.Generator

	srs, err := kzg.NewSRS(4*n, big.NewInt(1337))
	require.NoError(t, err)

	one := fr.One()
	var negOne fr.Element
	negOne.Neg(&one)

	qlv := make([]fr.Element, n)
	qrv := make([]fr.Element, n)
	qov := make([]fr.Element, n)
	qmv := make([]fr.Element, n)
	qcv := make([]fr.Element, n)
	qlv[0] = one    // public input row
	qmv[1] = one    // a·b
	qov[1] = negOne // -c

	k1 := fr.NewElement(2)
	k2 := fr.NewElement(3)

	// identity columns: ωⁱ, k1·ωⁱ, k2·ωⁱ
	var sigma [3][]fr.Element
	shift := [3]fr.Element{one, k1, k2}
	for col := 0; col < 3; col++ {
		sigma[col] = make([]fr.Element, n)
		pow := one
		for row := uint64(0); row < n; row++ {
			sigma[col][row].Mul(&pow, &shift[col])
			pow.Mul(&pow, &omega)
		}
	}
	// copy constraint: wire a row 0 <-> wire c row 1
	sigma[0][0].Mul(&omega, &k2)
	sigma[2][1] = one

	c := &testCircuit{
		pk:     srs.Pk,
		domain: domain,
		n:      n,
		omega:  omega,
		ql:     interpolate(domain, qlv),
		qr:     interpolate(domain, qrv),
		qo:     interpolate(domain, qov),
		qm:     interpolate(domain, qmv),
		qc:     interpolate(domain, qcv),
		sigma:  sigma,
	}

	vk := &VerifyingKey{Size: n, NbPublic: 1, K1: k1, K2: k2, Kzg: srs.Vk}
	for i, p := range [][]fr.Element{c.ql, c.qr, c.qo, c.qm, c.qc} {
		d, err := kzg.Commit(p, srs.Pk)
		require.NoError(t, err)
		switch i {
		case 0:
			vk.Ql = d
		case 1:
			vk.Qr = d
		case 2:
			vk.Qo = d
		case 3:
			vk.Qm = d
		case 4:
			vk.Qc = d
		}
	}
	for col := 0; col < 3; col++ {
		c.s[col] = interpolate(domain, sigma[col])
		d, err := kzg.Commit(c.s[col], srs.Pk)
		require.NoError(t, err)
		vk.S[col] = d
	}

	parsed, err := ParseVerifyingKey(vk.Bytes())
	require.NoError(t, err)
	require.NoError(t, parsed.Validate())
	require.True(t, parsed.generator.Equal(&omega))
	c.vk = parsed
	return c
}

// witness returns the wire columns for a·b = x.
func (me *testCircuit) witness(a, b fr.Element) (wa, wb, wc []fr.Element) {
	wa = make([]fr.Element, me.n)
	wb = make([]fr.Element, me.n)
	wc = make([]fr.Element, me.n)
	var x fr.Element
	x.Mul(&a, &b)
	wa[0] = x
	wa[1] = a
	wb[1] = b
	wc[1] = x
	return
}

func (me *testCircuit) prove(t *testing.T, publics []fr.Element, wa, wb, wc []fr.Element) *Proof {
	t.Helper()
	n := me.n
	one := fr.One()
	proof := new(Proof)

	ap := interpolate(me.domain, wa)
	bp := interpolate(me.domain, wb)
	cp := interpolate(me.domain, wc)
	var err error
	proof.A, err = kzg.Commit(ap, me.pk)
	require.NoError(t, err)
	proof.B, err = kzg.Commit(bp, me.pk)
	require.NoError(t, err)
	proof.C, err = kzg.Commit(cp, me.pk)
	require.NoError(t, err)

	digest := me.vk.Digest()
	ts := transcript.New(TRANSCRIPT_DOMAIN)
	ts.Absorb("vk", digest[:])
	for i := range publics {
		ts.AbsorbFr("public", &publics[i])
	}
	ts.AbsorbG1("wire_a", &proof.A)
	ts.AbsorbG1("wire_b", &proof.B)
	ts.AbsorbG1("wire_c", &proof.C)
	beta := ts.Squeeze("beta")
	gamma := ts.Squeeze("gamma")

	// grand product over the rows
	zv := make([]fr.Element, n)
	zv[0] = one
	var num, den, f, g fr.Element
	pow := one
	shift := [3]fr.Element{one, me.vk.K1, me.vk.K2}
	wires := [3][]fr.Element{wa, wb, wc}
	for row := uint64(0); row+1 < n; row++ {
		num = one
		den = one
		for col := 0; col < 3; col++ {
			var id fr.Element
			id.Mul(&pow, &shift[col])
			f.Mul(&beta, &id).Add(&f, &wires[col][row]).Add(&f, &gamma)
			num.Mul(&num, &f)
			g.Mul(&beta, &me.sigma[col][row]).Add(&g, &wires[col][row]).Add(&g, &gamma)
			den.Mul(&den, &g)
		}
		den.Inverse(&den)
		zv[row+1].Mul(&zv[row], &num)
		zv[row+1].Mul(&zv[row+1], &den)
		pow.Mul(&pow, &me.omega)
	}
	zp := interpolate(me.domain, zv)
	proof.Z, err = kzg.Commit(zp, me.pk)
	require.NoError(t, err)
	ts.AbsorbG1("grand_product", &proof.Z)
	alpha := ts.Squeeze("alpha")

	// gate(X) = ql·a + qr·b + qo·c + qm·a·b + qc + PI
	piv := make([]fr.Element, n)
	for i := range publics {
		piv[i].Neg(&publics[i])
	}
	gatePoly := polyMul(me.ql, ap)
	gatePoly = polyAdd(gatePoly, polyMul(me.qr, bp))
	gatePoly = polyAdd(gatePoly, polyMul(me.qo, cp))
	gatePoly = polyAdd(gatePoly, polyMul(me.qm, polyMul(ap, bp)))
	gatePoly = polyAdd(gatePoly, me.qc)
	gatePoly = polyAdd(gatePoly, interpolate(me.domain, piv))

	// perm(X) = (a+βX+γ)(b+βk1X+γ)(c+βk2X+γ)z - (a+βs1+γ)(b+βs2+γ)(c+βs3+γ)z(ωX)
	mkLeft := func(w []fr.Element, k fr.Element) []fr.Element {
		var bk fr.Element
		bk.Mul(&beta, &k)
		return polyAdd(w, []fr.Element{gamma, bk})
	}
	mkRight := func(w, s []fr.Element) []fr.Element {
		return polyAdd(w, polyAdd(polyScale(s, beta), []fr.Element{gamma}))
	}
	left := polyMul(polyMul(mkLeft(ap, one), mkLeft(bp, me.vk.K1)), polyMul(mkLeft(cp, me.vk.K2), zp))
	zw := shiftOmega(zp, me.omega)
	right := polyMul(polyMul(mkRight(ap, me.s[0]), mkRight(bp, me.s[1])), polyMul(mkRight(cp, me.s[2]), zw))
	permPoly := polyAdd(left, polyScale(right, *new(fr.Element).Neg(&one)))

	// L₁(X)·(z(X)-1)
	l1v := make([]fr.Element, n)
	l1v[0] = one
	l1Poly := interpolate(me.domain, l1v)
	zm1 := polyAdd(zp, []fr.Element{*new(fr.Element).Neg(&one)})

	var alpha2 fr.Element
	alpha2.Mul(&alpha, &alpha)
	numer := polyAdd(gatePoly, polyScale(permPoly, alpha))
	numer = polyAdd(numer, polyScale(polyMul(l1Poly, zm1), alpha2))

	// exact for any witness satisfying the gates and copy constraints; a
	// bad witness leaves a remainder and the resulting proof will not verify
	tq, _ := divByVanishing(numer, n)
	proof.T, err = kzg.Commit(tq, me.pk)
	require.NoError(t, err)
	ts.AbsorbG1("quotient", &proof.T)
	zeta := ts.Squeeze("zeta")

	var zetaOmega fr.Element
	zetaOmega.Mul(&zeta, &me.omega)

	ev := &proof.Evals
	ev.A = polyEval(ap, zeta)
	ev.B = polyEval(bp, zeta)
	ev.C = polyEval(cp, zeta)
	ev.Ql = polyEval(me.ql, zeta)
	ev.Qr = polyEval(me.qr, zeta)
	ev.Qo = polyEval(me.qo, zeta)
	ev.Qm = polyEval(me.qm, zeta)
	ev.Qc = polyEval(me.qc, zeta)
	ev.S1 = polyEval(me.s[0], zeta)
	ev.S2 = polyEval(me.s[1], zeta)
	ev.S3 = polyEval(me.s[2], zeta)
	ev.Z = polyEval(zp, zeta)
	ev.ZOmega = polyEval(zp, zetaOmega)
	ev.T = polyEval(tq, zeta)
	for _, e := range ev.list() {
		ts.AbsorbFr("eval", e)
	}
	v := ts.Squeeze("v")

	// fold the thirteen ζ-opened polynomials with powers of v, in the same
	// order the verifier folds the commitments
	polys := [][]fr.Element{ap, bp, cp, me.ql, me.qr, me.qo, me.qm, me.qc, me.s[0], me.s[1], me.s[2], zp, tq}
	fold := []fr.Element{}
	vpow := one
	for _, p := range polys {
		fold = polyAdd(fold, polyScale(p, vpow))
		vpow.Mul(&vpow, &v)
	}
	openZeta, err := kzg.Open(fold, zeta, me.pk)
	require.NoError(t, err)
	proof.WZeta = openZeta.H
	openZetaOmega, err := kzg.Open(zp, zetaOmega, me.pk)
	require.NoError(t, err)
	proof.WZetaOmega = openZetaOmega.H
	return proof
}
