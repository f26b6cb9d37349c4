package pii

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

const formatVersion = "v1"

// Codec seals strings as "v1.<keyID>.<base64url(nonce|ciphertext)>".
// The version and key id are authenticated as associated data.
type Codec struct {
	ring *Keyring
}

func NewCodec(ring *Keyring) *Codec {
	return &Codec{ring: ring}
}

func (c *Codec) Encrypt(plain string) (string, error) {
	id := c.ring.active
	aead := c.ring.keys[id]

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	header := formatVersion + "." + id
	sealed := aead.Seal(nonce, nonce, []byte(plain), []byte(header))
	return header + "." + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt with any key still in the ring.
// Malformed, tampered or empty results return a *DecryptionError.
func (c *Codec) Decrypt(value string) (string, error) {
	parts := strings.SplitN(value, ".", 3)
	if len(parts) != 3 || parts[0] != formatVersion {
		return "", &DecryptionError{Reason: "malformed ciphertext"}
	}

	id := parts[1]
	aead, ok := c.ring.keys[id]
	if !ok {
		return "", &DecryptionError{Reason: fmt.Sprintf("unknown key %q", id)}
	}

	sealed, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", &DecryptionError{Reason: "bad encoding", Err: err}
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return "", &DecryptionError{Reason: "ciphertext too short"}
	}

	nonce, body := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, body, []byte(parts[0]+"."+id))
	if err != nil {
		return "", &DecryptionError{Reason: "authentication failed", Err: err}
	}
	if len(plain) == 0 {
		return "", &DecryptionError{Reason: "empty plaintext"}
	}
	return string(plain), nil
}

// EncryptJSON marshals v and seals the result.
func (c *Codec) EncryptJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return c.Encrypt(string(raw))
}

// DecryptJSON opens value and unmarshals it into v.
func (c *Codec) DecryptJSON(value string, v any) error {
	plain, err := c.Decrypt(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(plain), v); err != nil {
		return &DecryptionError{Reason: "payload is not valid JSON", Err: err}
	}
	return nil
}
