package verify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRecords(t *testing.T) *RecordStore {
	t.Helper()
	s, err := OpenRecordStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRecord() *VerificationRecord {
	return &VerificationRecord{
		ZKID:         uuid.NewString(),
		UserWallet:   hashWallet,
		ProofB64:     "cHJvb2Y=",
		PublicInputs: []json.Number{"100000000", "12345"},
		Threshold:    "10",
		IsValid:      true,
		ContentHash:  "ab12",
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestPutAndGet(t *testing.T) {
	s := openTestRecords(t)
	rec := sampleRecord()

	require.NoError(t, s.Put(rec))

	got, err := s.Get(rec.ZKID)
	require.NoError(t, err)
	assert.Equal(t, rec.UserWallet, got.UserWallet)
	assert.Equal(t, rec.PublicInputs, got.PublicInputs)
	assert.Equal(t, rec.Threshold, got.Threshold)
	assert.True(t, got.IsValid)
	assert.Empty(t, got.LedgerTxRef)
}

func TestPutRefusesOverwrite(t *testing.T) {
	s := openTestRecords(t)
	rec := sampleRecord()

	require.NoError(t, s.Put(rec))
	assert.ErrorIs(t, s.Put(rec), ErrRecordExists)
}

func TestGetMissing(t *testing.T) {
	s := openTestRecords(t)

	_, err := s.Get("no-such-id")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestAttachLedgerTxRef(t *testing.T) {
	s := openTestRecords(t)
	rec := sampleRecord()
	require.NoError(t, s.Put(rec))

	require.NoError(t, s.AttachLedgerTxRef(rec.ZKID, "tx-abc"))

	got, err := s.Get(rec.ZKID)
	require.NoError(t, err)
	assert.Equal(t, "tx-abc", got.LedgerTxRef)
	// everything else untouched
	assert.Equal(t, rec.ContentHash, got.ContentHash)

	assert.ErrorIs(t, s.AttachLedgerTxRef("missing", "tx"), ErrRecordNotFound)
}
