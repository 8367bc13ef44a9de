package zkp

import "encoding/json"

// ProofResult is a generated proof plus its transport form. It lives in
// memory only; nothing here is persisted beyond the server's content hash.
type ProofResult struct {
	Proof           []byte
	ProofB64        string
	PublicInputs    []json.Number
	VerificationKey []byte

	// IsValid records the local self-verification outcome. Servers must not
	// treat it as authoritative: any client can assert it.
	IsValid bool
}
