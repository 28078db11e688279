package stark

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/eon-protocol/uzkv/curve"
)

// Opening is a Merkle-authenticated value of one committed layer.
type Opening struct {
	Index uint64
	Value fr.Element
	Path  [][32]byte
}

// FriLayerOpening holds the pair of positions one folding step consumes:
// Low at index j, High at index j+size/2 of the layer's domain.
type FriLayerOpening struct {
	Low  Opening
	High Opening
}

// FriQuery walks one random position through every committed layer.
type FriQuery struct {
	Layers []FriLayerOpening
}

type Proof struct {
	TraceRoot [32]byte

	// Boundary opens the trace at rows 0, 1 and n-1 for the public inputs.
	Boundary [3]Opening

	// ConstraintQueries each open three consecutive trace rows.
	ConstraintQueries [][3]Opening

	// LayerRoots commits the intermediate FRI layers 1..L-1. Layer 0 is
	// the trace commitment itself.
	LayerRoots [][32]byte

	Remainder  fr.Element
	FriQueries []FriQuery
}

func openingSize(depth int) int {
	return 4 + curve.FrBytes + 32*depth
}

// Size is the exact serialized proof length for keys with vk's parameters.
func Size(vk *VerifyingKey) int {
	nq, _ := vk.Level.Params()
	depth := bits.TrailingZeros64(vk.DomainSize())
	layers := vk.Layers()

	n := 32 + 3*openingSize(depth)     // trace root, boundary
	n += nq * 3 * openingSize(depth)   // constraint queries
	n += (layers - 1) * 32             // intermediate roots
	n += curve.FrBytes                 // remainder
	for l := 0; l < layers; l++ {
		n += nq * 2 * openingSize(depth-l)
	}
	return n
}

func appendOpening(buf []byte, o *Opening) []byte {
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], uint32(o.Index))
	buf = append(buf, idx[:]...)
	buf = curve.AppendFr(buf, &o.Value)
	for _, h := range o.Path {
		buf = append(buf, h[:]...)
	}
	return buf
}

func readOpening(buf []byte, depth int) (Opening, []byte, error) {
	var o Opening
	if len(buf) < openingSize(depth) {
		return o, nil, fmt.Errorf("truncated opening")
	}
	o.Index = uint64(binary.BigEndian.Uint32(buf[:4]))
	v, err := curve.ReadFr(buf[4 : 4+curve.FrBytes])
	if err != nil {
		return o, nil, err
	}
	o.Value = v
	buf = buf[4+curve.FrBytes:]
	o.Path = make([][32]byte, depth)
	for i := range o.Path {
		copy(o.Path[i][:], buf[:32])
		buf = buf[32:]
	}
	return o, buf, nil
}

func (me *Proof) Bytes() []byte {
	buf := append([]byte(nil), me.TraceRoot[:]...)
	for i := range me.Boundary {
		buf = appendOpening(buf, &me.Boundary[i])
	}
	for i := range me.ConstraintQueries {
		for j := range me.ConstraintQueries[i] {
			buf = appendOpening(buf, &me.ConstraintQueries[i][j])
		}
	}
	for _, root := range me.LayerRoots {
		buf = append(buf, root[:]...)
	}
	buf = curve.AppendFr(buf, &me.Remainder)
	for i := range me.FriQueries {
		for j := range me.FriQueries[i].Layers {
			buf = appendOpening(buf, &me.FriQueries[i].Layers[j].Low)
			buf = appendOpening(buf, &me.FriQueries[i].Layers[j].High)
		}
	}
	return buf
}

// ParseProof decodes a proof whose layout is fixed by the verification key.
func ParseProof(vk *VerifyingKey, buf []byte) (*Proof, error) {
	if len(buf) != Size(vk) {
		return nil, fmt.Errorf("proof must be %d bytes, got %d", Size(vk), len(buf))
	}
	nq, _ := vk.Level.Params()
	depth := bits.TrailingZeros64(vk.DomainSize())
	layers := vk.Layers()

	proof := &Proof{}
	copy(proof.TraceRoot[:], buf[:32])
	buf = buf[32:]

	var err error
	for i := range proof.Boundary {
		if proof.Boundary[i], buf, err = readOpening(buf, depth); err != nil {
			return nil, err
		}
	}
	proof.ConstraintQueries = make([][3]Opening, nq)
	for i := range proof.ConstraintQueries {
		for j := 0; j < 3; j++ {
			if proof.ConstraintQueries[i][j], buf, err = readOpening(buf, depth); err != nil {
				return nil, err
			}
		}
	}
	proof.LayerRoots = make([][32]byte, layers-1)
	for i := range proof.LayerRoots {
		copy(proof.LayerRoots[i][:], buf[:32])
		buf = buf[32:]
	}
	rem, err := curve.ReadFr(buf[:curve.FrBytes])
	if err != nil {
		return nil, err
	}
	proof.Remainder = rem
	buf = buf[curve.FrBytes:]

	proof.FriQueries = make([]FriQuery, nq)
	for i := range proof.FriQueries {
		proof.FriQueries[i].Layers = make([]FriLayerOpening, layers)
		for l := 0; l < layers; l++ {
			if proof.FriQueries[i].Layers[l].Low, buf, err = readOpening(buf, depth-l); err != nil {
				return nil, err
			}
			if proof.FriQueries[i].Layers[l].High, buf, err = readOpening(buf, depth-l); err != nil {
				return nil, err
			}
		}
	}
	return proof, nil
}
