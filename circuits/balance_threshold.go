package circuits

import (
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/rangecheck"
)

func Curve() ecc.ID { return ecc.BN254 }

// BalanceThresholdCircuit proves balance >= threshold for a committed nonce
// without revealing the balance. SecretNonce must equal the public Nonce;
// that equality is what binds the proof to the claimed context.
type BalanceThresholdCircuit struct {
	Threshold frontend.Variable `gnark:",public"`
	Nonce     frontend.Variable `gnark:",public"`

	Balance     frontend.Variable
	SecretNonce frontend.Variable
}

func (c *BalanceThresholdCircuit) Define(api frontend.API) error {
	// Amounts live in the stroop domain: unsigned, 64 bits. The rangecheck
	// also rules out negative field elements sneaking in as huge values.
	ranger := rangecheck.New(api)
	ranger.Check(c.Balance, 64)
	ranger.Check(c.Threshold, 64)

	api.AssertIsEqual(c.Nonce, c.SecretNonce)
	api.AssertIsLessOrEqual(c.Threshold, c.Balance)
	return nil
}
