// Package groth16 implements BN254 Groth16 proof verification over the raw
// byte formats used on-chain: a 256-byte proof A||B||C and a verification
// key alpha||beta||gamma||delta||ic.
package groth16

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/eon-protocol/uzkv/curve"
)

const (
	ProofSize  = 2*curve.G1Bytes + curve.G2Bytes
	minKeySize = 2*curve.G1Bytes + 3*curve.G2Bytes
)

type Proof struct {
	A bn254.G1Affine
	B bn254.G2Affine
	C bn254.G1Affine
}

type VerifyingKey struct {
	Alpha bn254.G1Affine
	Beta  bn254.G2Affine
	Gamma bn254.G2Affine
	Delta bn254.G2Affine
	IC    []bn254.G1Affine
}

func ParseProof(buf []byte) (*Proof, error) {
	if len(buf) != ProofSize {
		return nil, fmt.Errorf("proof must be %d bytes, got %d", ProofSize, len(buf))
	}
	var p Proof
	var err error
	if p.A, err = curve.ReadG1(buf[0:64]); err != nil {
		return nil, err
	}
	if p.B, err = curve.ReadG2(buf[64:192]); err != nil {
		return nil, err
	}
	if p.C, err = curve.ReadG1(buf[192:256]); err != nil {
		return nil, err
	}
	return &p, nil
}

func (me *Proof) Bytes() []byte {
	buf := make([]byte, 0, ProofSize)
	buf = curve.AppendG1(buf, &me.A)
	buf = curve.AppendG2(buf, &me.B)
	return curve.AppendG1(buf, &me.C)
}

func (me *Proof) wellFormed() bool {
	return curve.ValidG1(&me.A) && curve.ValidG2(&me.B) && curve.ValidG1(&me.C)
}

func ParseVerifyingKey(buf []byte) (*VerifyingKey, error) {
	if len(buf) < minKeySize+curve.G1Bytes || (len(buf)-minKeySize)%curve.G1Bytes != 0 {
		return nil, fmt.Errorf("verification key has invalid length %d", len(buf))
	}
	var vk VerifyingKey
	var err error
	if vk.Alpha, err = curve.ReadG1(buf[0:64]); err != nil {
		return nil, err
	}
	if vk.Beta, err = curve.ReadG2(buf[64:192]); err != nil {
		return nil, err
	}
	if vk.Gamma, err = curve.ReadG2(buf[192:320]); err != nil {
		return nil, err
	}
	if vk.Delta, err = curve.ReadG2(buf[320:448]); err != nil {
		return nil, err
	}
	rest := buf[448:]
	vk.IC = make([]bn254.G1Affine, len(rest)/curve.G1Bytes)
	for i := range vk.IC {
		if vk.IC[i], err = curve.ReadG1(rest[i*curve.G1Bytes : (i+1)*curve.G1Bytes]); err != nil {
			return nil, err
		}
	}
	return &vk, nil
}

func (me *VerifyingKey) Bytes() []byte {
	buf := make([]byte, 0, minKeySize+len(me.IC)*curve.G1Bytes)
	buf = curve.AppendG1(buf, &me.Alpha)
	buf = curve.AppendG2(buf, &me.Beta)
	buf = curve.AppendG2(buf, &me.Gamma)
	buf = curve.AppendG2(buf, &me.Delta)
	for i := range me.IC {
		buf = curve.AppendG1(buf, &me.IC[i])
	}
	return buf
}

// NbPublic is the number of public inputs the key expects.
func (me *VerifyingKey) NbPublic() int {
	return len(me.IC) - 1
}

// Validate checks every embedded point. Keys are validated once at
// registration, not per verification.
func (me *VerifyingKey) Validate() error {
	for i := range me.IC {
		if !curve.ValidG1(&me.IC[i]) {
			return fmt.Errorf("ic[%d] is not in the subgroup", i)
		}
	}
	if !curve.ValidG1(&me.Alpha) {
		return errors.New("alpha is not in the subgroup")
	}
	for _, p := range []*bn254.G2Affine{&me.Beta, &me.Gamma, &me.Delta} {
		if !curve.ValidG2(p) {
			return errors.New("G2 point is not in the subgroup")
		}
	}
	return nil
}
