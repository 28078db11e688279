// Package uzkv is a universal verifier for zero-knowledge proofs over
// BN254: Groth16 and KZG-based PLONK pairing checks and hash-based STARKs
// behind one dispatch surface. Verification keys are registered once,
// content-addressed by hash, and proofs verify against the stored key.
package uzkv

import "github.com/eon-protocol/uzkv/registry"

// Scheme identifies a proof system.
type Scheme = registry.Scheme

const (
	Groth16 = registry.Groth16
	Plonk   = registry.Plonk
	Stark   = registry.Stark
)
