package verify

import (
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/rs/zerolog"
)

var (
	ErrRecordNotFound = errors.New("verification record not found")
	ErrRecordExists   = errors.New("verification record already exists")
)

var recordPrefix = []byte("records/")

// RecordStore persists VerificationRecords in badger, keyed by zk_id.
type RecordStore struct {
	db  *badger.DB
	log zerolog.Logger
}

func OpenRecordStore(dir string, log zerolog.Logger) (*RecordStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening record store: %w", err)
	}
	return &RecordStore{db: db, log: log.With().Str("component", "records").Logger()}, nil
}

func (s *RecordStore) Close() error { return s.db.Close() }

func recordKey(zkID string) []byte {
	return append(append([]byte{}, recordPrefix...), zkID...)
}

// Put writes a record exactly once; a second write under the same zk_id is
// an error, records are never replaced.
func (s *RecordStore) Put(rec *VerificationRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(recordKey(rec.ZKID))
		if err == nil {
			return ErrRecordExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(recordKey(rec.ZKID), raw)
	})
}

func (s *RecordStore) Get(zkID string) (*VerificationRecord, error) {
	var rec VerificationRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(zkID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrRecordNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// AttachLedgerTxRef is the single permitted mutation: recording the anchor
// transaction reference after a successful append.
func (s *RecordStore) AttachLedgerTxRef(zkID, txRef string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(zkID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrRecordNotFound
		}
		if err != nil {
			return err
		}
		var rec VerificationRecord
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		}); err != nil {
			return err
		}
		rec.LedgerTxRef = txRef
		raw, err := json.Marshal(&rec)
		if err != nil {
			return err
		}
		return txn.Set(recordKey(zkID), raw)
	})
}
