// Package zkp wraps the Groth16 backend behind the fixed engine contract:
// execute a witness, prove it, verify a proof, expose the verification key.
package zkp

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	backendwitness "github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/rs/zerolog"

	"github.com/yourorg/attendzk/circuits"
)

type Engine struct {
	cs constraint.ConstraintSystem
	pk groth16.ProvingKey
	vk groth16.VerifyingKey

	vkBytes []byte
	log     zerolog.Logger
}

// NewEngine loads the circuit artifact at path, or compiles and runs the
// trusted setup when the file does not exist yet, caching the result back to
// path. A present-but-malformed artifact is ErrCircuitLoad, never a silent
// recompile: the artifact pins the circuit version.
func NewEngine(path string, log zerolog.Logger) (*Engine, error) {
	e := &Engine{log: log.With().Str("component", "zkp").Logger()}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			cs, pk, vk, err := loadArtifact(path)
			if err != nil {
				return nil, err
			}
			e.cs, e.pk, e.vk = cs, pk, vk
			e.log.Debug().Str("path", path).Msg("circuit artifact loaded")
			return e, e.captureVK()
		}
	}

	cs, err := frontend.Compile(circuits.Curve().ScalarField(), r1cs.NewBuilder, &circuits.BalanceThresholdCircuit{})
	if err != nil {
		return nil, fmt.Errorf("compiling circuit: %w", err)
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, fmt.Errorf("circuit setup: %w", err)
	}
	e.cs, e.pk, e.vk = cs, pk, vk

	if path != "" {
		if err := writeArtifact(path, cs, pk, vk); err != nil {
			e.log.Warn().Err(err).Str("path", path).Msg("could not cache circuit artifact")
		}
	}
	return e, e.captureVK()
}

func (e *Engine) captureVK() error {
	var buf bytes.Buffer
	if _, err := e.vk.WriteTo(&buf); err != nil {
		return fmt.Errorf("serializing verification key: %w", err)
	}
	e.vkBytes = buf.Bytes()
	return nil
}

// Execute validates the inputs and produces the full witness. Inputs that
// cannot satisfy the constraints are ErrWitnessGeneration; they never reach
// proving.
func (e *Engine) Execute(in ProofInputs) (backendwitness.Witness, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	assignment := &circuits.BalanceThresholdCircuit{
		Threshold:   in.Threshold,
		Nonce:       in.Nonce,
		Balance:     in.Balance,
		SecretNonce: in.SecretNonce,
	}
	w, err := frontend.NewWitness(assignment, circuits.Curve().ScalarField())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWitnessGeneration, err)
	}
	// Validate caught the cheap cases; the solver check is authoritative.
	if err := e.cs.IsSolved(w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWitnessGeneration, err)
	}
	return w, nil
}

// Prove runs Groth16 on the witness and packages the proof with its public
// input assignment and transport encoding. IsValid is left false until a
// verification pass sets it.
func (e *Engine) Prove(w backendwitness.Witness) (*ProofResult, error) {
	proof, err := groth16.Prove(e.cs, e.pk, w)
	if err != nil {
		return nil, fmt.Errorf("proving: %w", err)
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serializing proof: %w", err)
	}

	pub, err := w.Public()
	if err != nil {
		return nil, fmt.Errorf("extracting public inputs: %w", err)
	}
	vec, ok := pub.Vector().(fr.Vector)
	if !ok {
		return nil, fmt.Errorf("unexpected public witness vector type %T", pub.Vector())
	}
	inputs := make([]json.Number, len(vec))
	for i := range vec {
		inputs[i] = json.Number(vec[i].String())
	}

	return &ProofResult{
		Proof:           buf.Bytes(),
		ProofB64:        base64.StdEncoding.EncodeToString(buf.Bytes()),
		PublicInputs:    inputs,
		VerificationKey: e.VerificationKey(),
	}, nil
}

// Verify checks a serialized proof against the public inputs in circuit
// order (threshold, nonce). A proof that fails verification returns
// (false, nil); a proof that cannot be decoded returns an error.
func (e *Engine) Verify(proofBytes []byte, publicInputs []json.Number) (bool, error) {
	if len(publicInputs) < 2 {
		return false, fmt.Errorf("expected 2 public inputs, got %d", len(publicInputs))
	}

	proof := groth16.NewProof(circuits.Curve())
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return false, fmt.Errorf("decoding proof: %w", err)
	}

	assignment := &circuits.BalanceThresholdCircuit{
		Threshold: string(publicInputs[0]),
		Nonce:     string(publicInputs[1]),
	}
	pubWit, err := frontend.NewWitness(assignment, circuits.Curve().ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, fmt.Errorf("building public witness: %w", err)
	}

	if err := groth16.Verify(proof, e.vk, pubWit); err != nil {
		e.log.Debug().Err(err).Msg("proof rejected")
		return false, nil
	}
	return true, nil
}

// VerificationKey returns the circuit's verification key bytes. Stable for a
// fixed circuit version, shared read-only across proofs.
func (e *Engine) VerificationKey() []byte {
	out := make([]byte, len(e.vkBytes))
	copy(out, e.vkBytes)
	return out
}
