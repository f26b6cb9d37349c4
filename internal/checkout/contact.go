package checkout

import "fmt"

// ContactCodec seals and opens JSON payloads. *pii.Codec satisfies it.
type ContactCodec interface {
	EncryptJSON(v any) (string, error)
	DecryptJSON(value string, v any) error
}

func EncryptContact(codec ContactCodec, c ContactBundle) (string, error) {
	sealed, err := codec.EncryptJSON(c)
	if err != nil {
		return "", fmt.Errorf("encrypt contact: %w", err)
	}
	return sealed, nil
}

func DecryptContact(codec ContactCodec, sealed string) (ContactBundle, error) {
	var c ContactBundle
	if err := codec.DecryptJSON(sealed, &c); err != nil {
		return ContactBundle{}, fmt.Errorf("decrypt contact: %w", err)
	}
	return c, nil
}
