// Package stark implements verification of hash-based STARK proofs for the
// Fibonacci AIR over the BN254 scalar field: a Merkle-committed low-degree
// extension of the execution trace, spot checks of the transition
// constraint, and a FRI low-degree test ending in a constant remainder.
package stark

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/sha3"
)

// AIR_FIBONACCI is the only supported transition system:
// trace[i+2] = trace[i+1] + trace[i], with public inputs
// [trace[0], trace[1], trace[n-1]].
const AIR_FIBONACCI = 1

const (
	KeySize     = 6
	NbPublic    = 3
	MaxTraceLen = 1 << 20
	MinTraceLen = 4
)

// SecurityLevel selects the query count and blowup factor.
type SecurityLevel uint8

const (
	// Test96 targets ~96 bits for test deployments.
	Test96 SecurityLevel = iota
	// Proven100 targets 100 bits under proven soundness bounds.
	Proven100
	// High128 targets 128 bits with a doubled blowup.
	High128
)

func (me SecurityLevel) Params() (queries int, blowup uint64) {
	switch me {
	case Proven100:
		return 28, 8
	case High128:
		return 36, 16
	default:
		return 27, 8
	}
}

func (me SecurityLevel) String() string {
	switch me {
	case Test96:
		return "test96"
	case Proven100:
		return "proven100"
	case High128:
		return "high128"
	default:
		return "unknown"
	}
}

type VerifyingKey struct {
	Air      byte
	Level    SecurityLevel
	TraceLen uint64

	digest [32]byte
}

func ParseVerifyingKey(buf []byte) (*VerifyingKey, error) {
	if len(buf) != KeySize {
		return nil, fmt.Errorf("verification key must be %d bytes, got %d", KeySize, len(buf))
	}
	vk := &VerifyingKey{
		Air:      buf[0],
		Level:    SecurityLevel(buf[1]),
		TraceLen: uint64(binary.BigEndian.Uint32(buf[2:6])),
	}
	if vk.Air != AIR_FIBONACCI {
		return nil, fmt.Errorf("unknown air %d", vk.Air)
	}
	if vk.Level > High128 {
		return nil, fmt.Errorf("unknown security level %d", buf[1])
	}
	if vk.TraceLen < MinTraceLen || vk.TraceLen > MaxTraceLen || bits.OnesCount64(vk.TraceLen) != 1 {
		return nil, errors.New("trace length must be a power of two")
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(buf)
	h.Sum(vk.digest[:0])
	return vk, nil
}

func (me *VerifyingKey) Bytes() []byte {
	buf := make([]byte, KeySize)
	buf[0] = me.Air
	buf[1] = byte(me.Level)
	binary.BigEndian.PutUint32(buf[2:6], uint32(me.TraceLen))
	return buf
}

func (me *VerifyingKey) Digest() [32]byte {
	return me.digest
}

// DomainSize is the size of the low-degree extension domain.
func (me *VerifyingKey) DomainSize() uint64 {
	_, blowup := me.Level.Params()
	return me.TraceLen * blowup
}

// Layers is the number of Merkle-committed FRI layers, the trace layer
// included. Folding that many times shrinks the codeword to blowup values,
// which for an honest proof are a single constant.
func (me *VerifyingKey) Layers() int {
	return bits.TrailingZeros64(me.TraceLen)
}

// transition checks the AIR constraint on three consecutive rows.
func transition(a, b, c *fr.Element) bool {
	var sum fr.Element
	sum.Add(a, b)
	return sum.Equal(c)
}
