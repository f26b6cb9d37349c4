package pii

import (
	"errors"
	"fmt"
)

var (
	ErrDecryption = errors.New("decryption failed")
	ErrNoKeys     = errors.New("no encryption keys configured")
)

// DecryptionError reports why a ciphertext could not be opened. It matches ErrDecryption.
type DecryptionError struct {
	Reason string
	Err    error
}

func (e *DecryptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decryption failed: %s: %v", e.Reason, e.Err)
	}
	return "decryption failed: " + e.Reason
}

func (e *DecryptionError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDecryption, e.Err}
	}
	return []error{ErrDecryption}
}
