// Package registry is the content-addressed store of verification keys.
// Keys are registered once, validated and precomputed at that point, and
// looked up by the keccak256 hash of their serialized bytes.
package registry

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/sha3"

	"github.com/eon-protocol/uzkv/groth16"
	"github.com/eon-protocol/uzkv/plonk"
	"github.com/eon-protocol/uzkv/stark"
)

// Scheme identifies a proof system.
type Scheme uint8

const (
	Groth16 Scheme = iota
	Plonk
	Stark
)

func (me Scheme) String() string {
	switch me {
	case Groth16:
		return "groth16"
	case Plonk:
		return "plonk"
	case Stark:
		return "stark"
	default:
		return fmt.Sprintf("scheme(%d)", uint8(me))
	}
}

var (
	ErrNotFound      = errors.New("verification key not found")
	ErrInvalidKey    = errors.New("invalid verification key")
	ErrUnknownScheme = errors.New("unknown proof scheme")
)

// Record is a registered verification key with its scheme tag and optional
// precomputed verification data.
type Record struct {
	Scheme      Scheme
	Key         []byte
	Precomputed []byte
}

// Store persists records by key hash.
type Store interface {
	Put(hash [32]byte, rec Record) error
	Get(hash [32]byte) (Record, bool, error)
}

// Hash is the registry address of a serialized key.
func Hash(key []byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(key)
	var out [32]byte
	h.Sum(out[:0])
	return out
}

type Registry struct {
	store Store
	log   zerolog.Logger
}

func New(store Store, log zerolog.Logger) *Registry {
	return &Registry{store: store, log: log}
}

// Register validates the key for its scheme, precomputes what the verifier
// can reuse and stores the record. Registration is idempotent: the same key
// bytes always map to the same hash.
func (me *Registry) Register(scheme Scheme, key []byte) ([32]byte, error) {
	hash := Hash(key)
	if _, ok, err := me.store.Get(hash); err != nil {
		return hash, err
	} else if ok {
		return hash, nil
	}
	pre, err := precompute(scheme, key)
	if err != nil {
		return hash, err
	}
	rec := Record{Scheme: scheme, Key: append([]byte(nil), key...), Precomputed: pre}
	if err := me.store.Put(hash, rec); err != nil {
		return hash, err
	}
	me.log.Info().
		Hex("vk", hash[:]).
		Stringer("scheme", scheme).
		Int("key_bytes", len(key)).
		Msg("verification key registered")
	return hash, nil
}

func (me *Registry) Get(hash [32]byte) (Record, error) {
	rec, ok, err := me.store.Get(hash)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (me *Registry) Has(hash [32]byte) (bool, error) {
	_, ok, err := me.store.Get(hash)
	return ok, err
}

// precompute parses and validates the key, returning any verification data
// worth caching. A failed precomputation is not fatal; verification falls
// back to the plain path.
func precompute(scheme Scheme, key []byte) ([]byte, error) {
	switch scheme {
	case Groth16:
		vk, err := groth16.ParseVerifyingKey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		if err := vk.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		pre, err := vk.PrecomputeAlphaBeta()
		if err != nil {
			return nil, nil
		}
		return pre, nil
	case Plonk:
		vk, err := plonk.ParseVerifyingKey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		if err := vk.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return nil, nil
	case Stark:
		if _, err := stark.ParseVerifyingKey(key); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return nil, nil
	default:
		return nil, ErrUnknownScheme
	}
}
