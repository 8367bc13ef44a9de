package zkp

import "errors"

var (
	// ErrCircuitLoad marks a missing or malformed circuit artifact, distinct
	// from generic I/O so callers can surface a "recompile the circuit"
	// message instead of a network one.
	ErrCircuitLoad = errors.New("circuit artifact load failed")

	// ErrInvalidInputs marks structurally bad proof inputs (empty or
	// non-numeric nonce) caught before any witness work.
	ErrInvalidInputs = errors.New("invalid proof inputs")

	// ErrWitnessGeneration marks inputs that cannot satisfy the circuit
	// constraints. There is no "proof of false": an unsatisfiable witness is
	// a hard error, never a proof that verifies negatively.
	ErrWitnessGeneration = errors.New("witness generation failed")
)
