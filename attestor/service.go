package attestor

import (
	"github.com/eon-protocol/uzkv"
)

// Service verifies proofs through the engine and attests the valid ones.
type Service struct {
	Engine *uzkv.Engine
	Signer *Signer
	Ledger *Ledger
}

// VerifyAndAttest verifies the proof and, when it is valid, signs and
// records its attestation. Invalid proofs verify false without a record.
func (me *Service) VerifyAndAttest(vkHash [32]byte, proof []byte, inputs [][]byte) (bool, *Record, error) {
	ok, err := me.Engine.Verify(vkHash, proof, inputs)
	if err != nil || !ok {
		return ok, nil, err
	}
	proofHash := ProofHash(proof, inputs)
	rec, err := me.Ledger.Attest(proofHash, me.Signer.Sign(proofHash))
	if err != nil {
		return true, nil, err
	}
	return true, &rec, nil
}
