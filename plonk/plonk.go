// Package plonk implements verification of KZG-based PLONK proofs over
// BN254. The circuit is described by gate selector and permutation
// commitments; the proof carries the wire, grand-product and quotient
// commitments, the claimed evaluations at the challenge point, and two KZG
// opening proofs.
package plonk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/kzg"
	"golang.org/x/crypto/sha3"

	"github.com/eon-protocol/uzkv/curve"
)

const (
	// n(8) || nbPublic(8) || ql qr qo qm qc s1 s2 s3 || k1 k2 || kzg G1 || kzg G2[0] G2[1]
	KeySize = 16 + 8*curve.G1Bytes + 2*curve.FrBytes + curve.G1Bytes + 2*curve.G2Bytes

	// a b c || z || t || 14 evaluations || w_zeta || w_zeta_omega
	ProofSize = 5*curve.G1Bytes + 14*curve.FrBytes + 2*curve.G1Bytes

	// MaxDomainSize caps the circuit domain a key may declare.
	MaxDomainSize = 1 << 26
)

type VerifyingKey struct {
	Size     uint64
	NbPublic uint64

	Ql, Qr, Qo, Qm, Qc bn254.G1Affine
	S                  [3]bn254.G1Affine

	// coset shifts for the wire b and c permutation columns
	K1, K2 fr.Element

	Kzg kzg.VerifyingKey

	generator fr.Element
	sizeInv   fr.Element
	digest    [32]byte
}

type Proof struct {
	A, B, C bn254.G1Affine // wire commitments
	Z       bn254.G1Affine // permutation grand product
	T       bn254.G1Affine // quotient

	Evals Evaluations

	WZeta      bn254.G1Affine // opening at ζ
	WZetaOmega bn254.G1Affine // opening at ζω
}

// Evaluations are the claimed polynomial values at ζ, except ZOmega which is
// the grand product at ζω.
type Evaluations struct {
	A, B, C            fr.Element
	Ql, Qr, Qo, Qm, Qc fr.Element
	S1, S2, S3         fr.Element
	Z, ZOmega          fr.Element
	T                  fr.Element
}

func (me *Evaluations) list() [14]*fr.Element {
	return [14]*fr.Element{
		&me.A, &me.B, &me.C,
		&me.Ql, &me.Qr, &me.Qo, &me.Qm, &me.Qc,
		&me.S1, &me.S2, &me.S3,
		&me.Z, &me.ZOmega, &me.T,
	}
}

func ParseVerifyingKey(buf []byte) (*VerifyingKey, error) {
	if len(buf) != KeySize {
		return nil, fmt.Errorf("verification key must be %d bytes, got %d", KeySize, len(buf))
	}
	vk := new(VerifyingKey)
	vk.Size = binary.BigEndian.Uint64(buf[0:8])
	vk.NbPublic = binary.BigEndian.Uint64(buf[8:16])
	if vk.Size < 2 || vk.Size > MaxDomainSize || bits.OnesCount64(vk.Size) != 1 {
		return nil, errors.New("domain size must be a power of two")
	}
	if vk.NbPublic >= vk.Size {
		return nil, errors.New("too many public inputs for the domain")
	}
	off := 16
	var err error
	for _, p := range []*bn254.G1Affine{&vk.Ql, &vk.Qr, &vk.Qo, &vk.Qm, &vk.Qc, &vk.S[0], &vk.S[1], &vk.S[2]} {
		if *p, err = curve.ReadG1(buf[off : off+curve.G1Bytes]); err != nil {
			return nil, err
		}
		off += curve.G1Bytes
	}
	if vk.K1, err = curve.ReadFr(buf[off : off+curve.FrBytes]); err != nil {
		return nil, err
	}
	off += curve.FrBytes
	if vk.K2, err = curve.ReadFr(buf[off : off+curve.FrBytes]); err != nil {
		return nil, err
	}
	off += curve.FrBytes
	if vk.Kzg.G1, err = curve.ReadG1(buf[off : off+curve.G1Bytes]); err != nil {
		return nil, err
	}
	off += curve.G1Bytes
	for i := 0; i < 2; i++ {
		if vk.Kzg.G2[i], err = curve.ReadG2(buf[off : off+curve.G2Bytes]); err != nil {
			return nil, err
		}
		off += curve.G2Bytes
	}
	if vk.generator, err = fr.Generator(vk.Size); err != nil {
		return nil, err
	}
	vk.sizeInv.SetUint64(vk.Size)
	vk.sizeInv.Inverse(&vk.sizeInv)
	h := sha3.NewLegacyKeccak256()
	h.Write(buf)
	h.Sum(vk.digest[:0])
	return vk, nil
}

func (me *VerifyingKey) Bytes() []byte {
	buf := make([]byte, 16, KeySize)
	binary.BigEndian.PutUint64(buf[0:8], me.Size)
	binary.BigEndian.PutUint64(buf[8:16], me.NbPublic)
	for _, p := range []*bn254.G1Affine{&me.Ql, &me.Qr, &me.Qo, &me.Qm, &me.Qc, &me.S[0], &me.S[1], &me.S[2]} {
		buf = curve.AppendG1(buf, p)
	}
	buf = curve.AppendFr(buf, &me.K1)
	buf = curve.AppendFr(buf, &me.K2)
	buf = curve.AppendG1(buf, &me.Kzg.G1)
	buf = curve.AppendG2(buf, &me.Kzg.G2[0])
	return curve.AppendG2(buf, &me.Kzg.G2[1])
}

// Digest is the transcript binding of the key, the keccak256 of its wire
// encoding.
func (me *VerifyingKey) Digest() [32]byte {
	return me.digest
}

// Validate checks every embedded point and the coset shifts. Run once at
// registration.
func (me *VerifyingKey) Validate() error {
	for _, p := range []*bn254.G1Affine{&me.Ql, &me.Qr, &me.Qo, &me.Qm, &me.Qc, &me.S[0], &me.S[1], &me.S[2], &me.Kzg.G1} {
		if !curve.ValidG1(p) {
			return errors.New("G1 point is not in the subgroup")
		}
	}
	for i := 0; i < 2; i++ {
		if !curve.ValidG2(&me.Kzg.G2[i]) {
			return errors.New("G2 point is not in the subgroup")
		}
	}
	if me.Kzg.G1.IsInfinity() || me.Kzg.G2[0].IsInfinity() || me.Kzg.G2[1].IsInfinity() {
		return errors.New("kzg key contains the point at infinity")
	}
	if me.K1.IsZero() || me.K2.IsZero() || me.K1.Equal(&me.K2) {
		return errors.New("coset shifts must be distinct and nonzero")
	}
	one := fr.One()
	if me.K1.Equal(&one) || me.K2.Equal(&one) {
		return errors.New("coset shifts must not be one")
	}
	return nil
}

func ParseProof(buf []byte) (*Proof, error) {
	if len(buf) != ProofSize {
		return nil, fmt.Errorf("proof must be %d bytes, got %d", ProofSize, len(buf))
	}
	p := new(Proof)
	off := 0
	var err error
	for _, pt := range []*bn254.G1Affine{&p.A, &p.B, &p.C, &p.Z, &p.T} {
		if *pt, err = curve.ReadG1(buf[off : off+curve.G1Bytes]); err != nil {
			return nil, err
		}
		off += curve.G1Bytes
	}
	for _, e := range p.Evals.list() {
		if *e, err = curve.ReadFr(buf[off : off+curve.FrBytes]); err != nil {
			return nil, err
		}
		off += curve.FrBytes
	}
	if p.WZeta, err = curve.ReadG1(buf[off : off+curve.G1Bytes]); err != nil {
		return nil, err
	}
	off += curve.G1Bytes
	if p.WZetaOmega, err = curve.ReadG1(buf[off : off+curve.G1Bytes]); err != nil {
		return nil, err
	}
	return p, nil
}

func (me *Proof) Bytes() []byte {
	buf := make([]byte, 0, ProofSize)
	for _, pt := range []*bn254.G1Affine{&me.A, &me.B, &me.C, &me.Z, &me.T} {
		buf = curve.AppendG1(buf, pt)
	}
	for _, e := range me.Evals.list() {
		buf = curve.AppendFr(buf, e)
	}
	buf = curve.AppendG1(buf, &me.WZeta)
	return curve.AppendG1(buf, &me.WZetaOmega)
}
