// Package verify is the server-side acceptance path: decode a proof
// submission, decide acceptance, derive the content hash, persist the
// verification record, and hand the hash to the anchoring queue.
package verify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yourorg/attendzk/pkg/ledger"
	"github.com/yourorg/attendzk/pkg/stroops"
)

// Submission is the transport-boundary input contract.
type Submission struct {
	Proof        json.RawMessage `json:"proof,omitempty"`
	ProofB64     string          `json:"proofB64,omitempty"`
	PublicInputs json.RawMessage `json:"publicInputs"`
	Threshold    *uint64         `json:"threshold"`
	VK           json.RawMessage `json:"vk,omitempty"`
	IsValid      *bool           `json:"isValid,omitempty"`
}

// Result is the success response body.
type Result struct {
	Message       string `json:"message"`
	Verified      bool   `json:"verified"`
	TxHash        string `json:"txHash"`
	SorobanTxHash string `json:"sorobanTxHash,omitempty"`
	ZKID          string `json:"zk_id"`
	SavedAt       string `json:"saved_at"`
}

// Verifier re-checks a proof cryptographically; only wired when strict
// verification is enabled.
type Verifier interface {
	Verify(proof []byte, publicInputs []json.Number) (bool, error)
}

// Anchorer receives accepted hashes for best-effort on-chain anchoring,
// decoupled from the request path.
type Anchorer interface {
	Enqueue(zkID string, hash [ledger.HashSize]byte)
}

type Config struct {
	// StrictVerify closes the client-trust gap by running cryptographic
	// verification on the acceptance path. Off by default: the permissive
	// behavior (trusting a missing or true isValid claim) is the documented
	// acceptance semantics, and enabling this changes which submissions are
	// accepted.
	StrictVerify bool
}

type Service struct {
	records  *RecordStore
	anchorer Anchorer
	verifier Verifier
	cfg      Config
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(records *RecordStore, anchorer Anchorer, verifier Verifier, cfg Config, log zerolog.Logger) *Service {
	return &Service{
		records:  records,
		anchorer: anchorer,
		verifier: verifier,
		cfg:      cfg,
		log:      log.With().Str("component", "verify").Logger(),
		now:      time.Now,
	}
}

// Accept runs the full acceptance path for one submission. On success the
// record is durably persisted before the anchor job is queued; anchoring
// outcome never influences the returned result.
func (s *Service) Accept(ctx context.Context, walletAddress string, sub Submission) (*Result, error) {
	if walletAddress == "" {
		return nil, badRequest(CodeInvalidWalletAddress, "wallet address is required")
	}

	proofBytes, err := decodeProof(sub.Proof, sub.ProofB64)
	if err != nil {
		return nil, err
	}
	proofB64 := sub.ProofB64
	if proofB64 == "" {
		proofB64 = encodeB64(proofBytes)
	}

	publicInputs, err := decodePublicInputs(sub.PublicInputs)
	if err != nil {
		return nil, err
	}
	if sub.Threshold == nil {
		return nil, badRequest(CodeMissingThreshold, "threshold is required")
	}

	// A client that says its own proof is invalid is rejected outright;
	// nothing is persisted.
	if sub.IsValid != nil && !*sub.IsValid {
		s.log.Info().Str("wallet", walletAddress).Msg("client-side verification failure asserted")
		return nil, badRequest(CodeClientVerifyFailed, "client-side verification failed")
	}

	if s.cfg.StrictVerify && s.verifier != nil {
		ok, verr := s.verifier.Verify(proofBytes, publicInputs)
		if verr != nil {
			return nil, badRequest(CodeProofRejected, "proof could not be verified")
		}
		if !ok {
			return nil, badRequest(CodeProofRejected, "proof failed verification")
		}
	}

	createdAt := s.now().UTC()
	contentHash, err := DeriveContentHash(proofB64, publicInputs, *sub.Threshold, walletAddress, createdAt)
	if err != nil {
		return nil, internal(CodeStorageFailure, "could not derive content hash")
	}

	rec := &VerificationRecord{
		ZKID:         uuid.NewString(),
		UserWallet:   walletAddress,
		ProofB64:     proofB64,
		PublicInputs: publicInputs,
		Threshold:    stroops.FromStroops(*sub.Threshold),
		IsValid:      true,
		ContentHash:  contentHash,
		CreatedAt:    createdAt,
	}

	// Persistence strictly precedes anchoring: the durable record must
	// exist even if the ledger never acknowledges the hash.
	if err := s.records.Put(rec); err != nil {
		s.log.Error().Err(err).Str("zk_id", rec.ZKID).Msg("record persistence failed")
		return nil, internal(CodeStorageFailure, "could not persist verification record")
	}

	var anchorHash [ledger.HashSize]byte
	if decoded, derr := decodeHex32(contentHash); derr == nil {
		anchorHash = decoded
		s.anchorer.Enqueue(rec.ZKID, anchorHash)
	} else {
		// cannot happen for a sha256 hex digest; logged, never fatal
		s.log.Error().Err(derr).Str("zk_id", rec.ZKID).Msg("content hash not anchorable")
	}

	s.log.Info().
		Str("zk_id", rec.ZKID).
		Str("wallet", walletAddress).
		Str("content_hash", contentHash).
		Msg("proof accepted")

	return &Result{
		Message:  "proof verified",
		Verified: true,
		TxHash:   contentHash,
		ZKID:     rec.ZKID,
		SavedAt:  createdAt.Format(TimestampLayout),
	}, nil
}

// Record returns a persisted record by zk_id.
func (s *Service) Record(zkID string) (*VerificationRecord, error) {
	return s.records.Get(zkID)
}
