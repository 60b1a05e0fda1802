package domain

import "errors"

// ErrorKind is the structured cause of a failed operation.
type ErrorKind string

const (
	KindNone            ErrorKind = ""
	KindValidation      ErrorKind = "validation"
	KindDecoding        ErrorKind = "decoding"
	KindAuthentication  ErrorKind = "authentication"
	KindDeserialization ErrorKind = "deserialization"
	KindSerialization   ErrorKind = "serialization"
	KindInternal        ErrorKind = "internal"
)

var (
	// ErrValidation marks missing or malformed request fields.
	ErrValidation = errors.New("invalid request")

	// ErrDecoding marks invalid base64 or inconsistent envelope lengths.
	ErrDecoding = errors.New("invalid envelope encoding")

	// ErrAuthentication marks a tag that does not verify. No plaintext is ever returned with it.
	ErrAuthentication = errors.New("authentication failed")

	// ErrDeserialization marks authentic plaintext that is not valid JSON.
	ErrDeserialization = errors.New("plaintext is not valid JSON")

	// ErrSerialization marks a value that cannot be encoded as JSON.
	ErrSerialization = errors.New("value is not JSON serializable")

	ErrInternal = errors.New("internal error")
)

// KindOf walks the error chain and reports the first matching kind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrDecoding):
		return KindDecoding
	case errors.Is(err, ErrAuthentication):
		return KindAuthentication
	case errors.Is(err, ErrDeserialization):
		return KindDeserialization
	case errors.Is(err, ErrSerialization):
		return KindSerialization
	default:
		return KindInternal
	}
}

// Describe renders a failure for the wire, e.g. "Decryption failed: authentication failed".
func Describe(op string, err error) string {
	return op + " failed: " + err.Error()
}
