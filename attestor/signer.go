// Package attestor turns verification results into signed attestations: a
// trusted signer commits to the hash of a verified proof and its public
// inputs, and a ledger records which proof hashes have been attested.
package attestor

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

// MESSAGE_PREFIX makes attestation signatures verifiable by EVM contracts
// through ecrecover.
var MESSAGE_PREFIX = []byte("\x19Ethereum Signed Message:\n32")

// SignatureSize is the length of a compact recoverable signature.
const SignatureSize = 65

// Address is the rightmost 20 bytes of the keccak256 of the uncompressed
// public key, the Ethereum convention.
type Address [20]byte

func (me Address) String() string {
	return "0x" + hex.EncodeToString(me[:])
}

func keccak(parts ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// ProofHash binds a proof to the public inputs it verified against.
func ProofHash(proof []byte, inputs [][]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(proof)
	for _, in := range inputs {
		h.Write(in)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

func messageHash(proofHash [32]byte) [32]byte {
	return keccak(MESSAGE_PREFIX, proofHash[:])
}

func PubKeyAddress(pub *secp256k1.PublicKey) Address {
	h := keccak(pub.SerializeUncompressed()[1:])
	var a Address
	copy(a[:], h[12:])
	return a
}

// Signer holds the attestation key.
type Signer struct {
	key *secp256k1.PrivateKey
}

func GenerateSigner() (*Signer, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &Signer{key: key}, nil
}

func SignerFromBytes(b []byte) (*Signer, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(b))
	}
	return &Signer{key: secp256k1.PrivKeyFromBytes(b)}, nil
}

func (me *Signer) Address() Address {
	return PubKeyAddress(me.key.PubKey())
}

func (me *Signer) Bytes() []byte {
	return me.key.Serialize()
}

// Sign produces a compact recoverable signature over the prefixed proof
// hash.
func (me *Signer) Sign(proofHash [32]byte) []byte {
	h := messageHash(proofHash)
	return ecdsa.SignCompact(me.key, h[:], false)
}

// RecoverSigner returns the address that signed the proof hash.
func RecoverSigner(proofHash [32]byte, sig []byte) (Address, error) {
	if len(sig) != SignatureSize {
		return Address{}, fmt.Errorf("signature must be %d bytes, got %d", SignatureSize, len(sig))
	}
	h := messageHash(proofHash)
	pub, _, err := ecdsa.RecoverCompact(sig, h[:])
	if err != nil {
		return Address{}, err
	}
	return PubKeyAddress(pub), nil
}
