package stark

import (
	"crypto/sha256"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// merkleTree is a binary SHA-256 tree over field elements. Leaves hash the
// 32-byte big-endian encoding of the value, inner nodes hash the
// concatenation of their children. The leaf count must be a power of two.
type merkleTree struct {
	// nodes[0] is the leaf layer, nodes[len-1] holds the single root
	nodes [][][32]byte
}

func leafHash(v *fr.Element) [32]byte {
	b := v.Bytes()
	return sha256.Sum256(b[:])
}

func nodeHash(l, r *[32]byte) [32]byte {
	var buf [64]byte
	copy(buf[:32], l[:])
	copy(buf[32:], r[:])
	return sha256.Sum256(buf[:])
}

func newMerkleTree(values []fr.Element) *merkleTree {
	layer := make([][32]byte, len(values))
	for i := range values {
		layer[i] = leafHash(&values[i])
	}
	me := &merkleTree{nodes: [][][32]byte{layer}}
	for len(layer) > 1 {
		next := make([][32]byte, len(layer)/2)
		for i := range next {
			next[i] = nodeHash(&layer[2*i], &layer[2*i+1])
		}
		me.nodes = append(me.nodes, next)
		layer = next
	}
	return me
}

func (me *merkleTree) Root() [32]byte {
	return me.nodes[len(me.nodes)-1][0]
}

// Path returns the sibling hashes from the leaf at index up to the root.
func (me *merkleTree) Path(index uint64) [][32]byte {
	path := make([][32]byte, 0, len(me.nodes)-1)
	for _, layer := range me.nodes[:len(me.nodes)-1] {
		path = append(path, layer[index^1])
		index >>= 1
	}
	return path
}

// verifyPath recomputes the root from a leaf value and its authentication
// path.
func verifyPath(root *[32]byte, index uint64, value *fr.Element, path [][32]byte) bool {
	h := leafHash(value)
	for _, sib := range path {
		if index&1 == 0 {
			h = nodeHash(&h, &sib)
		} else {
			h = nodeHash(&sib, &h)
		}
		index >>= 1
	}
	return h == *root
}
