package groth16

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	gnarkgroth16 "github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/stretchr/testify/require"
)

type productCircuit struct {
	A frontend.Variable
	B frontend.Variable
	C frontend.Variable `gnark:",public"`
}

func (c *productCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(api.Mul(c.A, c.B), c.C)
	return nil
}

func productFixture(t *testing.T) (*VerifyingKey, *Proof, []fr.Element) {
	t.Helper()
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &productCircuit{})
	require.NoError(t, err)
	pk, gvk, err := gnarkgroth16.Setup(ccs)
	require.NoError(t, err)
	witness, err := frontend.NewWitness(&productCircuit{A: 2, B: 3, C: 6}, ecc.BN254.ScalarField())
	require.NoError(t, err)
	gproof, err := gnarkgroth16.Prove(ccs, pk, witness)
	require.NoError(t, err)

	var vk VerifyingKey
	require.NoError(t, vk.FromGnarkVerifyingKey(gvk))
	var proof Proof
	require.NoError(t, proof.FromGnarkProof(gproof))
	return &vk, &proof, []fr.Element{fr.NewElement(6)}
}

func TestVerifyProduct(t *testing.T) {
	vk, proof, inputs := productFixture(t)
	require.NoError(t, vk.Validate())

	ok, err := vk.Verify(proof, inputs, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyWithPrecomputedPairing(t *testing.T) {
	vk, proof, inputs := productFixture(t)
	pre, err := vk.PrecomputeAlphaBeta()
	require.NoError(t, err)

	ok, err := vk.Verify(proof, inputs, pre)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRejectTamperedProof(t *testing.T) {
	vk, proof, inputs := productFixture(t)
	_, _, g1, _ := bn254.Generators()
	proof.C.Add(&proof.C, &g1)

	ok, err := vk.Verify(proof, inputs, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRejectWrongPublicInput(t *testing.T) {
	vk, proof, _ := productFixture(t)
	ok, err := vk.Verify(proof, []fr.Element{fr.NewElement(7)}, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRejectOffCurveProofPoint(t *testing.T) {
	vk, proof, inputs := productFixture(t)
	buf := proof.Bytes()
	buf[63] ^= 1 // low byte of A.Y
	tampered, err := ParseProof(buf)
	if err != nil {
		// flipping the byte can make the coordinate non-canonical, which
		// is also a rejection
		return
	}
	ok, err := vk.Verify(tampered, inputs, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInputCountMismatch(t *testing.T) {
	vk, proof, _ := productFixture(t)
	_, err := vk.Verify(proof, []fr.Element{fr.NewElement(6), fr.NewElement(1)}, nil)
	require.Error(t, err)
}

func TestWireRoundTrip(t *testing.T) {
	vk, proof, inputs := productFixture(t)

	vk2, err := ParseVerifyingKey(vk.Bytes())
	require.NoError(t, err)
	proof2, err := ParseProof(proof.Bytes())
	require.NoError(t, err)

	ok, err := vk2.Verify(proof2, inputs, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestParseRejectsBadLengths(t *testing.T) {
	_, err := ParseProof(make([]byte, ProofSize-1))
	require.Error(t, err)
	_, err = ParseVerifyingKey(make([]byte, minKeySize))
	require.Error(t, err)
	_, err = ParseVerifyingKey(make([]byte, minKeySize+65))
	require.Error(t, err)
}
