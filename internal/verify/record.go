package verify

import (
	"encoding/json"
	"time"
)

// VerificationRecord is the durable outcome of an accepted submission.
// Created exactly once; immutable afterwards except for attaching the
// ledger transaction reference once anchoring succeeds.
type VerificationRecord struct {
	ZKID         string        `json:"zk_id"`
	UserWallet   string        `json:"user_wallet"`
	ProofB64     string        `json:"proof_b64"`
	PublicInputs []json.Number `json:"public_inputs"`

	// Threshold in decimal XLM, converted back from the submitted stroops.
	Threshold string `json:"threshold"`

	// IsValid is the server's own acceptance decision, never a copy of the
	// client's claim.
	IsValid bool `json:"is_valid"`

	ContentHash string    `json:"content_hash"`
	LedgerTxRef string    `json:"ledger_tx_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
