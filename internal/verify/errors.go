package verify

import "net/http"

// ErrorCode is the machine-readable rejection code carried on the wire
// alongside a human-readable message.
type ErrorCode string

const (
	CodeMissingProof         ErrorCode = "MISSING_PROOF"
	CodeInvalidProofEncoding ErrorCode = "INVALID_PROOF_ENCODING"
	CodeInvalidPublicInputs  ErrorCode = "INVALID_PUBLIC_INPUTS"
	CodeMissingThreshold     ErrorCode = "MISSING_THRESHOLD"
	CodeInvalidWalletAddress ErrorCode = "INVALID_WALLET_ADDRESS"
	CodeClientVerifyFailed   ErrorCode = "CLIENT_SIDE_VERIFICATION_FAILED"
	CodeProofRejected        ErrorCode = "PROOF_REJECTED"
	CodeStorageFailure       ErrorCode = "STORAGE_FAILURE"
)

// Error is a structured rejection: code, message and the HTTP status class
// it maps to. No stack traces or internal identifiers leak through it.
type Error struct {
	Code    ErrorCode
	Message string
	Status  int
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Message }

func badRequest(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg, Status: http.StatusBadRequest}
}

func internal(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg, Status: http.StatusInternalServerError}
}
