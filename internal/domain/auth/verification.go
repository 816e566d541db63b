// Package auth contains the credential-verification contract consumed by the
// token cleanup job. Verification outcomes are classified structurally so
// callers never inspect error text.
package auth

import "fmt"

// VerificationKind classifies why a stored credential failed verification.
type VerificationKind string

const (
	// KindExpired marks a credential past its expiry.
	KindExpired VerificationKind = "expired"
	// KindMalformed marks a credential that could not be parsed.
	KindMalformed VerificationKind = "malformed"
	// KindSignatureInvalid marks a credential whose signature or claims
	// failed validation.
	KindSignatureInvalid VerificationKind = "signature_invalid"
)

// String returns the string representation of the kind.
func (k VerificationKind) String() string {
	return string(k)
}

// VerificationError reports a failed credential verification with its kind.
type VerificationError struct {
	Kind VerificationKind
	Err  error
}

// Error implements the error interface.
func (e *VerificationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("credential verification failed: %s", e.Kind)
	}
	return fmt.Sprintf("credential verification failed (%s): %v", e.Kind, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *VerificationError) Unwrap() error {
	return e.Err
}

// NewVerificationError wraps cause with a structured kind.
func NewVerificationError(kind VerificationKind, cause error) *VerificationError {
	return &VerificationError{Kind: kind, Err: cause}
}
