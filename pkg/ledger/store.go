package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/rs/zerolog"
)

var keyPrefix = []byte("hashes/")

// Store is the embedded HashLedger implementation: badger-backed,
// append-only, no cross-identifier interaction. Each identifier's list is a
// single value of concatenated 32-byte hashes.
type Store struct {
	db  *badger.DB
	log zerolog.Logger
}

func OpenStore(dir string, log zerolog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening ledger store: %w", err)
	}
	return &Store{db: db, log: log.With().Str("component", "ledger").Logger()}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func key(id []byte) []byte {
	return append(append([]byte{}, keyPrefix...), id...)
}

// AddHash appends hash to the identifier's list. The returned reference is
// the digest of (id, position, hash), standing in for the transaction hash
// a remote ledger would return.
func (s *Store) AddHash(ctx context.Context, id []byte, hash [HashSize]byte) (string, error) {
	if len(id) == 0 {
		return "", ErrBadIdentifier
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var position uint64
	err := s.db.Update(func(txn *badger.Txn) error {
		cur, err := readList(txn, key(id))
		if err != nil {
			return err
		}
		position = uint64(len(cur) / HashSize)
		return txn.Set(key(id), append(cur, hash[:]...))
	})
	if err != nil {
		return "", fmt.Errorf("appending hash: %w", err)
	}

	ref := entryRef(id, position, hash)
	s.log.Debug().Str("id", string(id)).Uint64("position", position).Str("ref", ref).Msg("hash appended")
	return ref, nil
}

// GetHashes returns the identifier's full list; an identifier that was
// never written reads as an empty list.
func (s *Store) GetHashes(ctx context.Context, id []byte) ([][HashSize]byte, error) {
	if len(id) == 0 {
		return nil, ErrBadIdentifier
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		raw, err = readList(txn, key(id))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("reading hashes: %w", err)
	}

	out := make([][HashSize]byte, 0, len(raw)/HashSize)
	for i := 0; i+HashSize <= len(raw); i += HashSize {
		var h [HashSize]byte
		copy(h[:], raw[i:i+HashSize])
		out = append(out, h)
	}
	return out, nil
}

func readList(txn *badger.Txn, k []byte) ([]byte, error) {
	item, err := txn.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func entryRef(id []byte, position uint64, hash [HashSize]byte) string {
	h := sha256.New()
	h.Write(id)
	var pos [8]byte
	binary.BigEndian.PutUint64(pos[:], position)
	h.Write(pos[:])
	h.Write(hash[:])
	return hex.EncodeToString(h.Sum(nil))
}
