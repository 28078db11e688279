package uzkv

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/eon-protocol/uzkv/curve"
	"github.com/eon-protocol/uzkv/groth16"
	"github.com/eon-protocol/uzkv/plonk"
	"github.com/eon-protocol/uzkv/registry"
	"github.com/eon-protocol/uzkv/stark"
)

// VK_CACHE_SIZE bounds the number of decoded verification keys the engine
// keeps in memory. Cold keys fall back to the registry store.
const VK_CACHE_SIZE = 128

// Limits are the resource ceilings the engine enforces before any curve
// arithmetic runs.
type Limits struct {
	MaxProofBytes   int
	MaxPublicInputs int
	MaxBatch        int
}

func DefaultLimits() Limits {
	return Limits{
		MaxProofBytes:   1 << 20,
		MaxPublicInputs: 64,
		MaxBatch:        64,
	}
}

// maxProofBytes is the per-scheme proof size ceiling. Pairing-based proofs
// have fixed small encodings; STARK proofs grow with the trace.
func maxProofBytes(scheme Scheme) int {
	switch scheme {
	case Groth16:
		return 512
	case Plonk:
		return 4096
	default:
		return 1 << 20
	}
}

// decodedKey caches the parse and validation work done at registration.
type decodedKey struct {
	scheme      Scheme
	groth16     *groth16.VerifyingKey
	plonk       *plonk.VerifyingKey
	stark       *stark.VerifyingKey
	precomputed []byte
}

// Engine dispatches verification requests to the scheme verifiers, backed
// by the key registry and an LRU of decoded keys.
type Engine struct {
	reg     *registry.Registry
	cache   *lru.Cache[[32]byte, *decodedKey]
	limits  Limits
	log     zerolog.Logger
	metrics *Metrics
}

func NewEngine(reg *registry.Registry, limits Limits, log zerolog.Logger) (*Engine, error) {
	cache, err := lru.New[[32]byte, *decodedKey](VK_CACHE_SIZE)
	if err != nil {
		return nil, err
	}
	return &Engine{reg: reg, cache: cache, limits: limits, log: log}, nil
}

// SetMetrics attaches prometheus counters. Nil metrics are a no-op.
func (me *Engine) SetMetrics(m *Metrics) {
	me.metrics = m
}

// Register validates and stores a verification key, returning its hash.
func (me *Engine) Register(scheme Scheme, key []byte) ([32]byte, error) {
	hash, err := me.reg.Register(scheme, key)
	if err != nil {
		return hash, err
	}
	if me.metrics != nil {
		me.metrics.Registrations.Inc()
	}
	return hash, nil
}

func (me *Engine) loadKey(hash [32]byte) (*decodedKey, error) {
	if dk, ok := me.cache.Get(hash); ok {
		return dk, nil
	}
	rec, err := me.reg.Get(hash)
	if err != nil {
		return nil, err
	}
	dk := &decodedKey{scheme: rec.Scheme, precomputed: rec.Precomputed}
	switch rec.Scheme {
	case Groth16:
		dk.groth16, err = groth16.ParseVerifyingKey(rec.Key)
	case Plonk:
		dk.plonk, err = plonk.ParseVerifyingKey(rec.Key)
	case Stark:
		dk.stark, err = stark.ParseVerifyingKey(rec.Key)
	default:
		return nil, ErrUnknownScheme
	}
	if err != nil {
		return nil, fmt.Errorf("%w: stored key: %v", ErrMalformedInput, err)
	}
	me.cache.Add(hash, dk)
	return dk, nil
}

func (me *Engine) parseInputs(raw [][]byte) ([]fr.Element, error) {
	if len(raw) > me.limits.MaxPublicInputs {
		return nil, ErrTooManyInputs
	}
	inputs := make([]fr.Element, len(raw))
	for i, b := range raw {
		v, err := curve.ReadFr(b)
		if err != nil {
			return nil, fmt.Errorf("%w: public input %d: %v", ErrMalformedInput, i, err)
		}
		inputs[i] = v
	}
	return inputs, nil
}

// Verify checks one proof against the registered key identified by hash.
// Public inputs are 32-byte big-endian field elements. An invalid proof is
// a false result; only malformed requests and infrastructure failures are
// errors.
func (me *Engine) Verify(hash [32]byte, proof []byte, rawInputs [][]byte) (bool, error) {
	dk, err := me.loadKey(hash)
	if err != nil {
		return false, err
	}
	ok, err := me.verify(dk, proof, rawInputs)
	me.observe(dk.scheme, ok, err)
	me.log.Debug().
		Hex("vk", hash[:]).
		Stringer("scheme", dk.scheme).
		Bool("valid", ok).
		Err(err).
		Msg("proof verified")
	return ok, err
}

func (me *Engine) verify(dk *decodedKey, proof []byte, rawInputs [][]byte) (bool, error) {
	limit := me.limits.MaxProofBytes
	if s := maxProofBytes(dk.scheme); s < limit {
		limit = s
	}
	if len(proof) > limit {
		return false, fmt.Errorf("%w: %d bytes over %d", ErrProofTooLarge, len(proof), limit)
	}
	inputs, err := me.parseInputs(rawInputs)
	if err != nil {
		return false, err
	}
	switch dk.scheme {
	case Groth16:
		p, err := groth16.ParseProof(proof)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		if len(inputs) != dk.groth16.NbPublic() {
			return false, fmt.Errorf("%w: want %d public inputs, got %d", ErrMalformedInput, dk.groth16.NbPublic(), len(inputs))
		}
		return dk.groth16.Verify(p, inputs, dk.precomputed)
	case Plonk:
		p, err := plonk.ParseProof(proof)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		if uint64(len(inputs)) != dk.plonk.NbPublic {
			return false, fmt.Errorf("%w: want %d public inputs, got %d", ErrMalformedInput, dk.plonk.NbPublic, len(inputs))
		}
		return dk.plonk.Verify(p, inputs)
	case Stark:
		p, err := stark.ParseProof(dk.stark, proof)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		if len(inputs) != stark.NbPublic {
			return false, fmt.Errorf("%w: want %d public inputs, got %d", ErrMalformedInput, stark.NbPublic, len(inputs))
		}
		return dk.stark.Verify(p, inputs)
	default:
		return false, ErrUnknownScheme
	}
}

// BatchVerify verifies the i-th proof against the i-th key hash and inputs,
// fanning out across cores. A malformed or oversized item yields false at
// its index; a missing key fails the whole batch.
func (me *Engine) BatchVerify(ctx context.Context, hashes [][32]byte, proofs [][]byte, rawInputs [][][]byte) ([]bool, error) {
	if len(hashes) != len(proofs) || len(hashes) != len(rawInputs) {
		return nil, ErrLengthMismatch
	}
	if len(hashes) > me.limits.MaxBatch {
		return nil, fmt.Errorf("%w: %d proofs over %d", ErrBatchTooLarge, len(hashes), me.limits.MaxBatch)
	}
	results := make([]bool, len(hashes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range hashes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ok, err := me.Verify(hashes[i], proofs[i], rawInputs[i])
			switch {
			case err == nil:
				results[i] = ok
			case errors.Is(err, ErrMalformedInput),
				errors.Is(err, ErrProofTooLarge),
				errors.Is(err, ErrTooManyInputs):
				results[i] = false
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (me *Engine) observe(scheme Scheme, ok bool, err error) {
	if me.metrics == nil {
		return
	}
	outcome := "valid"
	if err != nil {
		outcome = "error"
	} else if !ok {
		outcome = "invalid"
	}
	me.metrics.Verifications.WithLabelValues(scheme.String(), outcome).Inc()
}
