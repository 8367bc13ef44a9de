package verify

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the ISO-8601 form used in records, responses and the
// content-hash payload.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// hashPayload is marshalled with this exact key order; the digest is only
// interoperable if every implementation serializes the same bytes.
type hashPayload struct {
	ProofB64      string        `json:"proofB64"`
	PublicInputs  []json.Number `json:"publicInputs"`
	Threshold     uint64        `json:"threshold"`
	WalletAddress string        `json:"walletAddress"`
	Timestamp     string        `json:"timestamp"`
}

// DeriveContentHash computes the lowercase-hex SHA-256 of the canonical
// submission JSON. The timestamp is part of the payload, so the same proof
// hashed at two different instants yields two different digests; that is
// deliberate (a stored hash cannot be replayed as someone else's anchor)
// and means the hash is NOT a pure function of proof content alone.
func DeriveContentHash(proofB64 string, publicInputs []json.Number, thresholdStroops uint64, walletAddress string, ts time.Time) (string, error) {
	payload := hashPayload{
		ProofB64:      proofB64,
		PublicInputs:  publicInputs,
		Threshold:     thresholdStroops,
		WalletAddress: walletAddress,
		Timestamp:     ts.UTC().Format(TimestampLayout),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("canonical serialization: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
