package zkp

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"

	"github.com/yourorg/attendzk/circuits"
)

const artifactVersion = 1

// artifact is the on-disk circuit bundle: compiled constraint system plus
// proving and verifying keys, stable for a fixed circuit version.
type artifact struct {
	Circuit          string `json:"circuit"`
	Version          int    `json:"version"`
	Curve            string `json:"curve"`
	Hash             string `json:"hash"`
	ConstraintSystem string `json:"constraintSystem"`
	ProvingKey       string `json:"provingKey"`
	VerifyingKey     string `json:"verifyingKey"`
}

func loadArtifact(path string) (constraint.ConstraintSystem, groth16.ProvingKey, groth16.VerifyingKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrCircuitLoad, err)
	}

	var a artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: not a circuit artifact: %v", ErrCircuitLoad, err)
	}
	if a.Curve != circuits.Curve().String() || a.Version != artifactVersion {
		return nil, nil, nil, fmt.Errorf("%w: artifact is for %s v%d", ErrCircuitLoad, a.Curve, a.Version)
	}

	csBytes, err := base64.StdEncoding.DecodeString(a.ConstraintSystem)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: constraint system: %v", ErrCircuitLoad, err)
	}
	sum := sha256.Sum256(csBytes)
	if hex.EncodeToString(sum[:]) != a.Hash {
		return nil, nil, nil, fmt.Errorf("%w: constraint system hash mismatch", ErrCircuitLoad)
	}

	cs := groth16.NewCS(circuits.Curve())
	if _, err := cs.ReadFrom(bytes.NewReader(csBytes)); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: constraint system: %v", ErrCircuitLoad, err)
	}

	pk := groth16.NewProvingKey(circuits.Curve())
	if err := readKey(pk, a.ProvingKey); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: proving key: %v", ErrCircuitLoad, err)
	}
	vk := groth16.NewVerifyingKey(circuits.Curve())
	if err := readKey(vk, a.VerifyingKey); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: verifying key: %v", ErrCircuitLoad, err)
	}
	return cs, pk, vk, nil
}

func readKey(key io.ReaderFrom, b64 string) error {
	b, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return err
	}
	_, err = key.ReadFrom(bytes.NewReader(b))
	return err
}

func writeArtifact(path string, cs constraint.ConstraintSystem, pk groth16.ProvingKey, vk groth16.VerifyingKey) error {
	var csBuf, pkBuf, vkBuf bytes.Buffer
	if _, err := cs.WriteTo(&csBuf); err != nil {
		return err
	}
	if _, err := pk.WriteTo(&pkBuf); err != nil {
		return err
	}
	if _, err := vk.WriteTo(&vkBuf); err != nil {
		return err
	}
	sum := sha256.Sum256(csBuf.Bytes())

	a := artifact{
		Circuit:          "balance_threshold",
		Version:          artifactVersion,
		Curve:            circuits.Curve().String(),
		Hash:             hex.EncodeToString(sum[:]),
		ConstraintSystem: base64.StdEncoding.EncodeToString(csBuf.Bytes()),
		ProvingKey:       base64.StdEncoding.EncodeToString(pkBuf.Bytes()),
		VerifyingKey:     base64.StdEncoding.EncodeToString(vkBuf.Bytes()),
	}
	raw, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
