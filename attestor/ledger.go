package attestor

import (
	"errors"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/rs/zerolog"
)

// TopicAttested carries a Record for every new attestation.
const TopicAttested = "attestor:recorded"

var ErrUntrustedSigner = errors.New("signer is not trusted")

// Record is one accepted attestation.
type Record struct {
	ProofHash [32]byte
	Signer    Address
	Timestamp time.Time
}

// Ledger records attestations from trusted signers and publishes them on
// an event bus. Attesting the same proof hash twice returns the original
// record.
type Ledger struct {
	mu      sync.RWMutex
	trusted map[Address]struct{}
	records map[[32]byte]Record

	bus EventBus.Bus
	now func() time.Time
	log zerolog.Logger
}

func NewLedger(log zerolog.Logger) *Ledger {
	return &Ledger{
		trusted: make(map[Address]struct{}),
		records: make(map[[32]byte]Record),
		bus:     EventBus.New(),
		now:     time.Now,
		log:     log,
	}
}

func (me *Ledger) Trust(addr Address) {
	me.mu.Lock()
	defer me.mu.Unlock()
	me.trusted[addr] = struct{}{}
}

// Attest verifies the signature, checks the signer is trusted and records
// the attestation.
func (me *Ledger) Attest(proofHash [32]byte, sig []byte) (Record, error) {
	addr, err := RecoverSigner(proofHash, sig)
	if err != nil {
		return Record{}, err
	}
	me.mu.Lock()
	if _, ok := me.trusted[addr]; !ok {
		me.mu.Unlock()
		return Record{}, ErrUntrustedSigner
	}
	if rec, ok := me.records[proofHash]; ok {
		me.mu.Unlock()
		return rec, nil
	}
	rec := Record{ProofHash: proofHash, Signer: addr, Timestamp: me.now()}
	me.records[proofHash] = rec
	me.mu.Unlock()

	me.bus.Publish(TopicAttested, rec)
	me.log.Info().
		Hex("proof", proofHash[:]).
		Stringer("signer", addr).
		Msg("attestation recorded")
	return rec, nil
}

func (me *Ledger) IsAttested(proofHash [32]byte) bool {
	me.mu.RLock()
	defer me.mu.RUnlock()
	_, ok := me.records[proofHash]
	return ok
}

func (me *Ledger) Timestamp(proofHash [32]byte) (time.Time, bool) {
	me.mu.RLock()
	defer me.mu.RUnlock()
	rec, ok := me.records[proofHash]
	return rec.Timestamp, ok
}

func (me *Ledger) Count() int {
	me.mu.RLock()
	defer me.mu.RUnlock()
	return len(me.records)
}

// Subscribe registers a handler for new attestations.
func (me *Ledger) Subscribe(fn func(Record)) error {
	return me.bus.Subscribe(TopicAttested, fn)
}
