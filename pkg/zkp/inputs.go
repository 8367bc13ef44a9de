package zkp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// ProofInputs is the circuit's input vector. Threshold and Nonce are public;
// Balance and SecretNonce are private witness values. Amounts are stroops.
type ProofInputs struct {
	Threshold   uint64
	Nonce       string
	Balance     uint64
	SecretNonce string
}

// Validate fails fast on inputs the circuit would reject, which is cheaper
// than burning proving time. The circuit constraints remain the
// authoritative check.
func (in ProofInputs) Validate() error {
	if in.Nonce == "" || in.SecretNonce == "" {
		return fmt.Errorf("%w: nonce must be non-empty", ErrInvalidInputs)
	}
	if _, ok := new(big.Int).SetString(in.Nonce, 10); !ok {
		return fmt.Errorf("%w: nonce %q is not a decimal integer", ErrInvalidInputs, in.Nonce)
	}
	if in.Nonce != in.SecretNonce {
		return fmt.Errorf("%w: nonce and secret nonce differ", ErrWitnessGeneration)
	}
	if in.Balance < in.Threshold {
		return fmt.Errorf("%w: balance %d below threshold %d", ErrWitnessGeneration, in.Balance, in.Threshold)
	}
	return nil
}

// NewNonce draws a fresh 128-bit value from crypto/rand and renders it as a
// decimal field-element string.
func NewNonce() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("nonce generation: %w", err)
	}
	return new(big.Int).SetBytes(buf[:]).String(), nil
}
