package zkp

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine("", zerolog.Nop())
	require.NoError(t, err)
	return e
}

func TestProveAndVerify(t *testing.T) {
	e := newTestEngine(t)

	nonce, err := NewNonce()
	require.NoError(t, err)

	w, err := e.Execute(ProofInputs{
		Threshold:   100_000_000,
		Nonce:       nonce,
		Balance:     255_000_000,
		SecretNonce: nonce,
	})
	require.NoError(t, err)

	res, err := e.Prove(w)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Proof)
	assert.Len(t, res.PublicInputs, 2)
	assert.NotEmpty(t, res.VerificationKey)

	// transport encoding round-trips
	decoded, err := base64.StdEncoding.DecodeString(res.ProofB64)
	require.NoError(t, err)
	assert.Equal(t, res.Proof, decoded)
	assert.Equal(t, res.ProofB64, base64.StdEncoding.EncodeToString(decoded))

	ok, err := e.Verify(res.Proof, res.PublicInputs)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExecuteRejectsInsufficientBalance(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Execute(ProofInputs{
		Threshold:   100_000_000,
		Nonce:       "12345",
		Balance:     30_000_000,
		SecretNonce: "12345",
	})
	assert.ErrorIs(t, err, ErrWitnessGeneration)
}

func TestExecuteRejectsNonceMismatch(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Execute(ProofInputs{
		Threshold:   10,
		Nonce:       "111",
		Balance:     1_000_000,
		SecretNonce: "222",
	})
	assert.ErrorIs(t, err, ErrWitnessGeneration)
}

func TestExecuteRejectsEmptyNonce(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Execute(ProofInputs{Threshold: 1, Balance: 2})
	assert.ErrorIs(t, err, ErrInvalidInputs)
}

func TestVerifyRejectsTamperedPublicInputs(t *testing.T) {
	e := newTestEngine(t)

	w, err := e.Execute(ProofInputs{
		Threshold:   50,
		Nonce:       "777",
		Balance:     60,
		SecretNonce: "777",
	})
	require.NoError(t, err)
	res, err := e.Prove(w)
	require.NoError(t, err)

	tampered := append([]json.Number{}, res.PublicInputs...)
	tampered[0] = "9999"
	ok, err := e.Verify(res.Proof, tampered)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArtifactCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance_threshold.json")

	first, err := NewEngine(path, zerolog.Nop())
	require.NoError(t, err)
	require.FileExists(t, path)

	// second engine loads the cached artifact and proves against the same keys
	second, err := NewEngine(path, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, first.VerificationKey(), second.VerificationKey())

	w, err := second.Execute(ProofInputs{
		Threshold:   5,
		Nonce:       "31337",
		Balance:     9,
		SecretNonce: "31337",
	})
	require.NoError(t, err)
	res, err := second.Prove(w)
	require.NoError(t, err)

	ok, err := first.Verify(res.Proof, res.PublicInputs)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMalformedArtifactIsCircuitLoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance_threshold.json")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0o644))

	_, err := NewEngine(path, zerolog.Nop())
	assert.ErrorIs(t, err, ErrCircuitLoad)
}

func TestNewNonce(t *testing.T) {
	a, err := NewNonce()
	require.NoError(t, err)
	b, err := NewNonce()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^[0-9]+$`, a)
}
