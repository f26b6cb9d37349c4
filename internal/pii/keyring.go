package pii

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const keyInfoPrefix = "marketplace-pii/v1/"

// Keyring holds one active key for sealing and any number of retired keys that can
// still open older ciphertext.
type Keyring struct {
	active string
	keys   map[string]cipher.AEAD
}

// NewKeyring derives an AES-256-GCM key per secret. activeID may be empty when exactly
// one secret is given.
func NewKeyring(activeID string, secrets map[string]string) (*Keyring, error) {
	if len(secrets) == 0 {
		return nil, ErrNoKeys
	}
	if activeID == "" {
		if len(secrets) != 1 {
			return nil, fmt.Errorf("active key id required when %d keys are configured", len(secrets))
		}
		for id := range secrets {
			activeID = id
		}
	}
	if _, ok := secrets[activeID]; !ok {
		return nil, fmt.Errorf("active key %q not in keyring", activeID)
	}

	ring := &Keyring{active: activeID, keys: make(map[string]cipher.AEAD, len(secrets))}
	for id, secret := range secrets {
		if id == "" || strings.Contains(id, ".") {
			return nil, fmt.Errorf("invalid key id %q", id)
		}
		if secret == "" {
			return nil, fmt.Errorf("empty secret for key %q", id)
		}
		aead, err := deriveAEAD(id, secret)
		if err != nil {
			return nil, fmt.Errorf("derive key %q: %w", id, err)
		}
		ring.keys[id] = aead
	}
	return ring, nil
}

func deriveAEAD(id, secret string) (cipher.AEAD, error) {
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfoPrefix+id))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (k *Keyring) ActiveID() string { return k.active }

// IDs lists every key id, sorted.
func (k *Keyring) IDs() []string {
	ids := make([]string, 0, len(k.keys))
	for id := range k.keys {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
