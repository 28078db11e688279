// Package transcript implements the Keccak256 Fiat-Shamir transcript shared
// by the PLONK and STARK verifiers.
package transcript

import (
	"encoding/binary"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/sha3"

	"github.com/eon-protocol/uzkv/curve"
)

// Transcript accumulates labelled messages and derives challenges from them.
// Every message is framed with a little-endian length so distinct absorb
// sequences can never produce the same state. Squeezing hashes the running
// state together with the challenge label and feeds the digest back, so
// consecutive challenges are independent.
type Transcript struct {
	state []byte
}

func New(domain string) *Transcript {
	me := &Transcript{state: make([]byte, 0, 1024)}
	me.frame([]byte(domain))
	return me
}

func (me *Transcript) frame(b []byte) {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(b)))
	me.state = append(me.state, n[:]...)
	me.state = append(me.state, b...)
}

func (me *Transcript) Absorb(label string, data []byte) {
	me.frame([]byte(label))
	me.frame(data)
}

func (me *Transcript) AbsorbFr(label string, v *fr.Element) {
	b := v.Bytes()
	me.Absorb(label, b[:])
}

func (me *Transcript) AbsorbG1(label string, p *bn254.G1Affine) {
	me.Absorb(label, curve.AppendG1(nil, p))
}

func (me *Transcript) challenge(label string) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(me.state)
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(label)))
	h.Write(n[:])
	h.Write([]byte(label))
	var sum [32]byte
	h.Sum(sum[:0])
	me.frame(sum[:])
	return sum
}

// Squeeze derives a field element challenge, reducing the digest mod r.
func (me *Transcript) Squeeze(label string) fr.Element {
	sum := me.challenge(label)
	var v fr.Element
	v.SetBytes(sum[:])
	return v
}

// SqueezeIndex derives an index in [0, n).
func (me *Transcript) SqueezeIndex(label string, n uint64) uint64 {
	sum := me.challenge(label)
	return binary.BigEndian.Uint64(sum[24:]) % n
}
