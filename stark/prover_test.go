package stark

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/stretchr/testify/require"

	"github.com/eon-protocol/uzkv/transcript"
)

// extend evaluates the degree <n interpolant of the trace on the blowup
// times larger domain.
func extend(t *testing.T, trace []fr.Element, domainSize uint64) []fr.Element {
	t.Helper()
	small := fft.NewDomain(uint64(len(trace)))
	coeffs := append([]fr.Element(nil), trace...)
	small.FFTInverse(coeffs, fft.DIF)
	fft.BitReverse(coeffs)

	evals := make([]fr.Element, domainSize)
	copy(evals, coeffs)
	large := fft.NewDomain(domainSize)
	large.FFT(evals, fft.DIF)
	fft.BitReverse(evals)
	return evals
}

func layerGenerators(t *testing.T, domainSize uint64, layers int) []fr.Element {
	t.Helper()
	gens := make([]fr.Element, layers)
	for l := range gens {
		g, err := fr.Generator(domainSize >> l)
		require.NoError(t, err)
		gens[l] = g
	}
	return gens
}

func foldLayer(vals []fr.Element, gen, alpha *fr.Element) []fr.Element {
	half := len(vals) / 2
	out := make([]fr.Element, half)
	x := fr.One()
	for j := 0; j < half; j++ {
		out[j] = foldPair(&vals[j], &vals[j+half], &x, alpha)
		x.Mul(&x, gen)
	}
	return out
}

func openAt(tree *merkleTree, vals []fr.Element, idx uint64) Opening {
	return Opening{Index: idx, Value: vals[idx], Path: tree.Path(idx)}
}

// prove builds an honest proof for the given trace, replaying the same
// transcript the verifier does.
func prove(t *testing.T, vk *VerifyingKey, trace []fr.Element, publics []fr.Element) *Proof {
	t.Helper()
	nq, blowup := vk.Level.Params()
	n := vk.TraceLen
	domainSize := vk.DomainSize()
	layers := vk.Layers()
	require.Len(t, trace, int(n))

	evals := extend(t, trace, domainSize)
	for i := uint64(0); i < n; i++ {
		require.True(t, trace[i].Equal(&evals[i*blowup]), "trace row %d must survive extension", i)
	}
	gens := layerGenerators(t, domainSize, layers)

	codewords := [][]fr.Element{evals}
	trees := []*merkleTree{newMerkleTree(evals)}
	proof := &Proof{TraceRoot: trees[0].Root()}

	ts := transcript.New(TRANSCRIPT_DOMAIN)
	digest := vk.Digest()
	ts.Absorb("vk", digest[:])
	for i := range publics {
		ts.AbsorbFr("public", &publics[i])
	}
	ts.Absorb("trace_root", proof.TraceRoot[:])

	rows := make([]uint64, nq)
	for i := range rows {
		rows[i] = ts.SqueezeIndex("constraint_query", n-2)
	}

	alphas := make([]fr.Element, 0, layers)
	alphas = append(alphas, ts.Squeeze("fri_alpha"))
	for l := 1; l < layers; l++ {
		next := foldLayer(codewords[l-1], &gens[l-1], &alphas[l-1])
		tree := newMerkleTree(next)
		root := tree.Root()
		proof.LayerRoots = append(proof.LayerRoots, root)
		ts.Absorb("fri_root", root[:])
		alphas = append(alphas, ts.Squeeze("fri_alpha"))
		codewords = append(codewords, next)
		trees = append(trees, tree)
	}
	final := foldLayer(codewords[layers-1], &gens[layers-1], &alphas[layers-1])
	for i := 1; i < len(final); i++ {
		require.True(t, final[0].Equal(&final[i]), "honest folding must end in a constant")
	}
	proof.Remainder = final[0]
	ts.AbsorbFr("fri_remainder", &proof.Remainder)

	positions := make([]uint64, nq)
	for i := range positions {
		positions[i] = ts.SqueezeIndex("fri_query", domainSize)
	}

	boundaryRows := [NbPublic]uint64{0, 1, n - 1}
	for i, row := range boundaryRows {
		proof.Boundary[i] = openAt(trees[0], evals, row*blowup)
	}
	proof.ConstraintQueries = make([][3]Opening, nq)
	for qi, row := range rows {
		for j := uint64(0); j < 3; j++ {
			proof.ConstraintQueries[qi][j] = openAt(trees[0], evals, (row+j)*blowup)
		}
	}
	proof.FriQueries = make([]FriQuery, nq)
	for qi, idx := range positions {
		q := &proof.FriQueries[qi]
		q.Layers = make([]FriLayerOpening, layers)
		for l := 0; l < layers; l++ {
			half := (domainSize >> l) / 2
			j := idx % half
			q.Layers[l].Low = openAt(trees[l], codewords[l], j)
			q.Layers[l].High = openAt(trees[l], codewords[l], j+half)
			idx = j
		}
	}
	return proof
}

func fibTrace(n int) []fr.Element {
	trace := make([]fr.Element, n)
	trace[0].SetOne()
	trace[1].SetOne()
	for i := 2; i < n; i++ {
		trace[i].Add(&trace[i-1], &trace[i-2])
	}
	return trace
}

func testKey(t *testing.T, level SecurityLevel, traceLen uint32) *VerifyingKey {
	t.Helper()
	raw := []byte{AIR_FIBONACCI, byte(level), 0, 0, 0, 0}
	raw[2] = byte(traceLen >> 24)
	raw[3] = byte(traceLen >> 16)
	raw[4] = byte(traceLen >> 8)
	raw[5] = byte(traceLen)
	vk, err := ParseVerifyingKey(raw)
	require.NoError(t, err)
	return vk
}
