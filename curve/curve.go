// Package curve implements the BN254 wire encodings shared by every proof
// system in this module: 32-byte big-endian canonical field elements,
// 64-byte uncompressed G1 points and 128-byte G2 points with the A1||A0
// coordinate ordering used by the EVM pairing precompile.
package curve

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const (
	FrBytes = 32
	G1Bytes = 64
	G2Bytes = 128
)

var ErrNotCanonical = errors.New("field element is not canonical")

// ReadFr decodes a canonical big-endian scalar. Values >= the field modulus
// are rejected rather than reduced.
func ReadFr(buf []byte) (fr.Element, error) {
	var v fr.Element
	if len(buf) != FrBytes {
		return v, fmt.Errorf("scalar must be %d bytes, got %d", FrBytes, len(buf))
	}
	if err := v.SetBytesCanonical(buf); err != nil {
		return v, ErrNotCanonical
	}
	return v, nil
}

// ReadG1 decodes an uncompressed point X||Y. The all-zero encoding is the
// point at infinity. Coordinates must be canonical; whether the point lies
// on the curve is a separate question, see ValidG1.
func ReadG1(buf []byte) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	if len(buf) != G1Bytes {
		return p, fmt.Errorf("G1 point must be %d bytes, got %d", G1Bytes, len(buf))
	}
	if err := p.X.SetBytesCanonical(buf[:32]); err != nil {
		return p, ErrNotCanonical
	}
	if err := p.Y.SetBytesCanonical(buf[32:]); err != nil {
		return p, ErrNotCanonical
	}
	return p, nil
}

// ReadG2 decodes an uncompressed point X.A1||X.A0||Y.A1||Y.A0.
func ReadG2(buf []byte) (bn254.G2Affine, error) {
	var p bn254.G2Affine
	if len(buf) != G2Bytes {
		return p, fmt.Errorf("G2 point must be %d bytes, got %d", G2Bytes, len(buf))
	}
	coords := []interface {
		SetBytesCanonical([]byte) error
	}{&p.X.A1, &p.X.A0, &p.Y.A1, &p.Y.A0}
	for i, c := range coords {
		if err := c.SetBytesCanonical(buf[i*32 : (i+1)*32]); err != nil {
			return p, ErrNotCanonical
		}
	}
	return p, nil
}

func AppendFr(dst []byte, v *fr.Element) []byte {
	b := v.Bytes()
	return append(dst, b[:]...)
}

func AppendG1(dst []byte, p *bn254.G1Affine) []byte {
	x := p.X.Bytes()
	y := p.Y.Bytes()
	dst = append(dst, x[:]...)
	return append(dst, y[:]...)
}

func AppendG2(dst []byte, p *bn254.G2Affine) []byte {
	xa1 := p.X.A1.Bytes()
	xa0 := p.X.A0.Bytes()
	ya1 := p.Y.A1.Bytes()
	ya0 := p.Y.A0.Bytes()
	dst = append(dst, xa1[:]...)
	dst = append(dst, xa0[:]...)
	dst = append(dst, ya1[:]...)
	return append(dst, ya0[:]...)
}

// ValidG1 reports whether a decoded point may enter a pairing: infinity, or
// on the curve and in the prime-order subgroup.
func ValidG1(p *bn254.G1Affine) bool {
	if p.IsInfinity() {
		return true
	}
	return p.IsOnCurve() && p.IsInSubGroup()
}

func ValidG2(p *bn254.G2Affine) bool {
	if p.IsInfinity() {
		return true
	}
	return p.IsOnCurve() && p.IsInSubGroup()
}
