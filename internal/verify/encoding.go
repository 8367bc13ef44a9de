package verify

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// decodeProof resolves the accepted proof encodings into one canonical byte
// slice, once, at the transport boundary. proofB64 takes precedence; the
// proof field may be a base64 string, a JSON array of byte values, or an
// object with numeric string keys whose values are taken in insertion
// order (a direct byte-for-byte reconstruction, not a sorted decode).
func decodeProof(raw json.RawMessage, proofB64 string) ([]byte, error) {
	if proofB64 != "" {
		b, err := base64.StdEncoding.DecodeString(proofB64)
		if err != nil {
			return nil, badRequest(CodeInvalidProofEncoding, "proofB64 is not valid base64")
		}
		return b, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, badRequest(CodeMissingProof, "either proof or proofB64 is required")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, badRequest(CodeInvalidProofEncoding, "proof string is malformed")
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, badRequest(CodeInvalidProofEncoding, "proof string is not valid base64")
		}
		return b, nil
	case '[':
		return decodeByteArray(trimmed)
	case '{':
		return decodeNumericKeyObject(trimmed)
	default:
		return nil, badRequest(CodeInvalidProofEncoding, "unsupported proof encoding")
	}
}

func decodeByteArray(raw []byte) ([]byte, error) {
	var vals []json.Number
	if err := json.Unmarshal(raw, &vals); err != nil {
		return nil, badRequest(CodeInvalidProofEncoding, "proof array is malformed")
	}
	out := make([]byte, 0, len(vals))
	for _, v := range vals {
		b, err := toByte(v)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// decodeNumericKeyObject walks the object token by token so key insertion
// order survives; unmarshalling into a map would scramble it.
func decodeNumericKeyObject(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if _, err := dec.Token(); err != nil { // opening brace
		return nil, badRequest(CodeInvalidProofEncoding, "proof object is malformed")
	}

	var out []byte
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, badRequest(CodeInvalidProofEncoding, "proof object is malformed")
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, badRequest(CodeInvalidProofEncoding, "proof object key is not a string")
		}
		if _, err := strconv.Atoi(key); err != nil {
			return nil, badRequest(CodeInvalidProofEncoding, fmt.Sprintf("proof object key %q is not numeric", key))
		}

		valTok, err := dec.Token()
		if err != nil {
			return nil, badRequest(CodeInvalidProofEncoding, "proof object is malformed")
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return nil, badRequest(CodeInvalidProofEncoding, "proof object value is not a number")
		}
		b, err := toByte(num)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if _, err := dec.Token(); err != nil && err != io.EOF { // closing brace
		return nil, badRequest(CodeInvalidProofEncoding, "proof object is malformed")
	}
	if len(out) == 0 {
		return nil, badRequest(CodeMissingProof, "proof object is empty")
	}
	return out, nil
}

func toByte(n json.Number) (byte, error) {
	v, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil || v < 0 || v > 255 {
		return 0, badRequest(CodeInvalidProofEncoding, fmt.Sprintf("value %s is not a byte", n))
	}
	return byte(v), nil
}

// decodePublicInputs coerces a bare number or an array of numbers (numeric
// strings included) into the canonical []json.Number. Field elements can
// exceed float64, so nothing here round-trips through floats.
func decodePublicInputs(raw json.RawMessage) ([]json.Number, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, badRequest(CodeInvalidPublicInputs, "publicInputs is required")
	}

	if trimmed[0] != '[' {
		n, err := coerceNumber(trimmed)
		if err != nil {
			return nil, err
		}
		return []json.Number{n}, nil
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(trimmed, &parts); err != nil {
		return nil, badRequest(CodeInvalidPublicInputs, "publicInputs array is malformed")
	}
	if len(parts) == 0 {
		return nil, badRequest(CodeInvalidPublicInputs, "publicInputs must not be empty")
	}
	out := make([]json.Number, 0, len(parts))
	for _, p := range parts {
		n, err := coerceNumber(bytes.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func coerceNumber(raw []byte) (json.Number, error) {
	if len(raw) == 0 {
		return "", badRequest(CodeInvalidPublicInputs, "empty public input")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", badRequest(CodeInvalidPublicInputs, "public input string is malformed")
		}
		raw = []byte(s)
	}
	n := json.Number(raw)
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		// large field elements overflow float64 but remain valid integers
		if !isDecimalInteger(n.String()) {
			return "", badRequest(CodeInvalidPublicInputs, fmt.Sprintf("public input %q is not numeric", n))
		}
	}
	return n, nil
}

func encodeB64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func decodeHex32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != len(out) {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func isDecimalInteger(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && (r == '-' || r == '+') && len(s) > 1 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
