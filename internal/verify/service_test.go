package verify

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/attendzk/pkg/ledger"
)

type recordingAnchorer struct {
	zkIDs  []string
	hashes [][ledger.HashSize]byte
}

func (a *recordingAnchorer) Enqueue(zkID string, hash [ledger.HashSize]byte) {
	a.zkIDs = append(a.zkIDs, zkID)
	a.hashes = append(a.hashes, hash)
}

type stubVerifier struct{ ok bool }

func (v stubVerifier) Verify([]byte, []json.Number) (bool, error) { return v.ok, nil }

func boolPtr(b bool) *bool    { return &b }
func u64Ptr(v uint64) *uint64 { return &v }

func validSubmission() Submission {
	return Submission{
		ProofB64:     "cHJvb2YgYnl0ZXM=",
		PublicInputs: json.RawMessage(`[100000000, 12345]`),
		Threshold:    u64Ptr(100_000_000),
		IsValid:      boolPtr(true),
	}
}

func newTestService(t *testing.T, cfg Config, verifier Verifier) (*Service, *RecordStore, *recordingAnchorer) {
	t.Helper()
	records := openTestRecords(t)
	anchorer := &recordingAnchorer{}
	svc := NewService(records, anchorer, verifier, cfg, zerolog.Nop())
	return svc, records, anchorer
}

func TestAcceptHappyPath(t *testing.T) {
	svc, records, anchorer := newTestService(t, Config{}, nil)

	res, err := svc.Accept(context.Background(), hashWallet, validSubmission())
	require.NoError(t, err)

	assert.True(t, res.Verified)
	assert.Regexp(t, `^[0-9a-f]{64}$`, res.TxHash)
	assert.NotEmpty(t, res.ZKID)
	assert.NotEmpty(t, res.SavedAt)
	assert.Empty(t, res.SorobanTxHash, "anchoring is asynchronous; no ledger ref at response time")

	rec, err := records.Get(res.ZKID)
	require.NoError(t, err)
	assert.True(t, rec.IsValid)
	assert.Equal(t, res.TxHash, rec.ContentHash)
	assert.Equal(t, "10", rec.Threshold, "threshold stored back in decimal XLM")
	assert.Equal(t, hashWallet, rec.UserWallet)

	require.Len(t, anchorer.zkIDs, 1)
	assert.Equal(t, res.ZKID, anchorer.zkIDs[0])
}

func TestAcceptRecordPersistedBeforeAnchorEnqueue(t *testing.T) {
	svc, records, anchorer := newTestService(t, Config{}, nil)
	// the anchorer checks the record already exists when the job arrives
	checked := false
	svc.anchorer = anchorFunc(func(zkID string, _ [ledger.HashSize]byte) {
		_, err := records.Get(zkID)
		assert.NoError(t, err, "record must exist before anchoring")
		checked = true
	})
	_ = anchorer

	_, err := svc.Accept(context.Background(), hashWallet, validSubmission())
	require.NoError(t, err)
	assert.True(t, checked)
}

type anchorFunc func(string, [ledger.HashSize]byte)

func (f anchorFunc) Enqueue(zkID string, hash [ledger.HashSize]byte) { f(zkID, hash) }

func TestAcceptClientAssertedInvalid(t *testing.T) {
	svc, records, anchorer := newTestService(t, Config{}, nil)

	sub := validSubmission()
	sub.IsValid = boolPtr(false)

	_, err := svc.Accept(context.Background(), hashWallet, sub)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeClientVerifyFailed, verr.Code)
	assert.Equal(t, http.StatusBadRequest, verr.Status)

	// nothing persisted, nothing queued
	assert.Empty(t, anchorer.zkIDs)
	_ = records
}

func TestAcceptMissingIsValidProceeds(t *testing.T) {
	svc, _, _ := newTestService(t, Config{}, nil)

	sub := validSubmission()
	sub.IsValid = nil

	res, err := svc.Accept(context.Background(), hashWallet, sub)
	require.NoError(t, err)
	assert.True(t, res.Verified)
}

func TestAcceptMissingProof(t *testing.T) {
	svc, _, _ := newTestService(t, Config{}, nil)

	sub := validSubmission()
	sub.ProofB64 = ""

	_, err := svc.Accept(context.Background(), hashWallet, sub)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeMissingProof, verr.Code)
}

func TestAcceptMissingThreshold(t *testing.T) {
	svc, _, _ := newTestService(t, Config{}, nil)

	sub := validSubmission()
	sub.Threshold = nil

	_, err := svc.Accept(context.Background(), hashWallet, sub)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeMissingThreshold, verr.Code)
}

func TestAcceptProofFromByteObject(t *testing.T) {
	svc, records, _ := newTestService(t, Config{}, nil)

	sub := validSubmission()
	sub.ProofB64 = ""
	sub.Proof = json.RawMessage(`{"0":12,"1":8,"2":200}`)

	res, err := svc.Accept(context.Background(), hashWallet, sub)
	require.NoError(t, err)

	rec, err := records.Get(res.ZKID)
	require.NoError(t, err)
	assert.Equal(t, "DAjI", rec.ProofB64) // base64 of {12, 8, 200}
}

func TestAcceptStrictVerifyRejectsBadProof(t *testing.T) {
	svc, _, anchorer := newTestService(t, Config{StrictVerify: true}, stubVerifier{ok: false})

	_, err := svc.Accept(context.Background(), hashWallet, validSubmission())
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeProofRejected, verr.Code)
	assert.Empty(t, anchorer.zkIDs)
}

func TestAcceptStrictVerifyPassesGoodProof(t *testing.T) {
	svc, _, _ := newTestService(t, Config{StrictVerify: true}, stubVerifier{ok: true})

	res, err := svc.Accept(context.Background(), hashWallet, validSubmission())
	require.NoError(t, err)
	assert.True(t, res.Verified)
}

// Without strict verification a garbage proof with an asserted isValid:true
// is accepted: the documented trust-boundary gap, pinned so any behavioral
// change is a conscious one.
func TestAcceptPermissiveModeTrustsClientClaim(t *testing.T) {
	svc, records, _ := newTestService(t, Config{}, stubVerifier{ok: false})

	res, err := svc.Accept(context.Background(), hashWallet, validSubmission())
	require.NoError(t, err)

	rec, err := records.Get(res.ZKID)
	require.NoError(t, err)
	assert.True(t, rec.IsValid)
}
