// Package prover orchestrates the client-side flow: balance lookup, nonce
// generation, witness execution, proving, self-verification and transport
// encoding. It holds no durable state.
package prover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	backendwitness "github.com/consensys/gnark/backend/witness"
	"github.com/rs/zerolog"

	"github.com/yourorg/attendzk/pkg/stroops"
	"github.com/yourorg/attendzk/pkg/zkp"
)

var (
	ErrWalletNotConnected = errors.New("no wallet address available")

	// ErrInsufficientBalance is a business outcome, not a system fault:
	// the account simply does not hold enough XLM.
	ErrInsufficientBalance = errors.New("balance below event threshold")

	ErrSelfVerification = errors.New("self-verification of generated proof failed")
)

// Stage identifies a step of the flow for progress reporting.
type Stage string

const (
	StageFetchBalance Stage = "fetch_balance"
	StageBuildInputs  Stage = "build_inputs"
	StageProve        Stage = "prove"
	StageVerify       Stage = "verify"
	StageEncode       Stage = "encode"
)

// ProgressFunc observes the flow entering each stage.
type ProgressFunc func(Stage)

// Oracle yields the current native balance for an address as a decimal
// XLM string.
type Oracle interface {
	NativeBalance(ctx context.Context, address string) (string, error)
}

// Engine is the circuit engine capability the coordinator drives.
type Engine interface {
	Execute(in zkp.ProofInputs) (backendwitness.Witness, error)
	Prove(w backendwitness.Witness) (*zkp.ProofResult, error)
	Verify(proof []byte, publicInputs []json.Number) (bool, error)
}

type Coordinator struct {
	oracle   Oracle
	engine   Engine
	log      zerolog.Logger
	progress ProgressFunc
}

type Option func(*Coordinator)

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Coordinator) { c.progress = fn }
}

func New(oracle Oracle, engine Engine, log zerolog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		oracle:   oracle,
		engine:   engine,
		log:      log.With().Str("component", "prover").Logger(),
		progress: func(Stage) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// step is a cancellation point between stages. The flow aborts cleanly at
// any boundary; proving itself is atomic once invoked.
func (c *Coordinator) step(ctx context.Context, s Stage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.progress(s)
	return nil
}

// GenerateProof turns a wallet address and an event's XLM threshold (decimal
// string) into a self-verified ProofResult ready for submission.
func (c *Coordinator) GenerateProof(ctx context.Context, wallet, xlmRequired string) (*zkp.ProofResult, error) {
	if wallet == "" {
		return nil, ErrWalletNotConnected
	}

	if err := c.step(ctx, StageFetchBalance); err != nil {
		return nil, err
	}
	balance, err := c.oracle.NativeBalance(ctx, wallet)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("wallet", wallet).Str("balance", balance).Msg("balance fetched")

	// Compared in the decimal domain before any integer conversion, so a
	// sub-stroop shortfall still counts as insufficient.
	cmp, err := stroops.Cmp(balance, xlmRequired)
	if err != nil {
		return nil, fmt.Errorf("comparing balances: %w", err)
	}
	if cmp < 0 {
		return nil, fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, balance, xlmRequired)
	}

	if err := c.step(ctx, StageBuildInputs); err != nil {
		return nil, err
	}
	nonce, err := zkp.NewNonce()
	if err != nil {
		return nil, err
	}
	thresholdStroops, err := stroops.ToStroops(xlmRequired)
	if err != nil {
		return nil, fmt.Errorf("converting threshold: %w", err)
	}
	balanceStroops, err := stroops.ToStroops(balance)
	if err != nil {
		return nil, fmt.Errorf("converting balance: %w", err)
	}

	inputs := zkp.ProofInputs{
		Threshold:   thresholdStroops,
		Nonce:       nonce,
		Balance:     balanceStroops,
		SecretNonce: nonce,
	}

	if err := c.step(ctx, StageProve); err != nil {
		return nil, err
	}
	w, err := c.engine.Execute(inputs)
	if err != nil {
		return nil, err
	}
	result, err := c.engine.Prove(w)
	if err != nil {
		return nil, err
	}

	if err := c.step(ctx, StageVerify); err != nil {
		return nil, err
	}
	ok, err := c.engine.Verify(result.Proof, result.PublicInputs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSelfVerification
	}
	result.IsValid = true

	if err := c.step(ctx, StageEncode); err != nil {
		return nil, err
	}
	c.log.Info().Str("wallet", wallet).Str("threshold", xlmRequired).Msg("proof generated")
	return result, nil
}
