// Package ledger is the append-only hash ledger: per-identifier lists of
// 32-byte hashes that are never removed or overwritten. Duplicates are
// allowed; idempotence, if wanted, belongs to the caller.
package ledger

import (
	"context"
	"errors"
)

// HashSize is the only accepted hash width. Anything else is rejected
// before it can reach contract storage.
const HashSize = 32

var ErrBadIdentifier = errors.New("ledger: empty identifier")

// HashLedger is the two-operation contract surface. AddHash appends and
// returns a transaction reference for the write; GetHashes returns the full
// accumulated list, empty (not an error) for an unused identifier.
type HashLedger interface {
	AddHash(ctx context.Context, id []byte, hash [HashSize]byte) (txRef string, err error)
	GetHashes(ctx context.Context, id []byte) ([][HashSize]byte, error)
}
