package groth16

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	gnarkgroth16 "github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
)

// FromGnarkProof fills the proof from a gnark-generated one.
func (me *Proof) FromGnarkProof(proof gnarkgroth16.Proof) error {
	cp, ok := proof.(*groth16bn254.Proof)
	if !ok {
		return errors.New("proof is not a bn254 groth16 proof")
	}
	if len(cp.Commitments) != 0 {
		return errors.New("commitment extensions are not supported")
	}
	me.A = cp.Ar
	me.B = cp.Bs
	me.C = cp.Krs
	return nil
}

// FromGnarkVerifyingKey fills the key from a gnark setup.
func (me *VerifyingKey) FromGnarkVerifyingKey(vk gnarkgroth16.VerifyingKey) error {
	cvk, ok := vk.(*groth16bn254.VerifyingKey)
	if !ok {
		return errors.New("key is not a bn254 groth16 key")
	}
	if len(cvk.G1.K) < 1 {
		return errors.New("key has no public input terms")
	}
	me.Alpha = cvk.G1.Alpha
	me.Beta = cvk.G2.Beta
	me.Gamma = cvk.G2.Gamma
	me.Delta = cvk.G2.Delta
	me.IC = append([]bn254.G1Affine(nil), cvk.G1.K...)
	return nil
}
