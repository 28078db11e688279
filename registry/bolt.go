package registry

import (
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
)

var BUCKET = []byte("verification_keys")

// BoltStore persists records in a single-file bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(BUCKET)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (me *BoltStore) Close() error {
	return me.db.Close()
}

// records are encoded as scheme byte, u32 key length, key bytes, then the
// precomputed blob
func encodeRecord(rec Record) []byte {
	buf := make([]byte, 0, 5+len(rec.Key)+len(rec.Precomputed))
	buf = append(buf, byte(rec.Scheme))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(rec.Key)))
	buf = append(buf, rec.Key...)
	return append(buf, rec.Precomputed...)
}

func decodeRecord(buf []byte) (Record, error) {
	if len(buf) < 5 {
		return Record{}, fmt.Errorf("corrupt record of %d bytes", len(buf))
	}
	keyLen := binary.BigEndian.Uint32(buf[1:5])
	if uint64(len(buf)) < 5+uint64(keyLen) {
		return Record{}, fmt.Errorf("corrupt record, key length %d exceeds %d bytes", keyLen, len(buf))
	}
	rec := Record{
		Scheme: Scheme(buf[0]),
		Key:    append([]byte(nil), buf[5:5+keyLen]...),
	}
	if rest := buf[5+keyLen:]; len(rest) > 0 {
		rec.Precomputed = append([]byte(nil), rest...)
	}
	return rec, nil
}

func (me *BoltStore) Put(hash [32]byte, rec Record) error {
	return me.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(BUCKET).Put(hash[:], encodeRecord(rec))
	})
}

func (me *BoltStore) Get(hash [32]byte) (Record, bool, error) {
	var rec Record
	var ok bool
	err := me.db.View(func(tx *bbolt.Tx) error {
		buf := tx.Bucket(BUCKET).Get(hash[:])
		if buf == nil {
			return nil
		}
		var err error
		if rec, err = decodeRecord(buf); err != nil {
			return err
		}
		ok = true
		return nil
	})
	return rec, ok, err
}
