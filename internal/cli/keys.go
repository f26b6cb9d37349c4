package cli

import (
	"context"
	"errors"
	"fmt"
	"log"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/pii"
)

var errNoKeySource = errors.New("no PII key source configured: set PII_KEYS or PII_SECRET_PROJECT")

// buildKeyring prefers inline PII_KEYS and falls back to Secret Manager.
func buildKeyring(ctx context.Context, cfg config.Config, logger *log.Logger) (*pii.Keyring, error) {
	if len(cfg.PIIKeys) > 0 {
		return pii.NewKeyring(cfg.PIIActiveKey, cfg.PIIKeys)
	}
	if cfg.PIISecretProject == "" {
		return nil, errNoKeySource
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create secret manager client: %w", err)
	}
	defer client.Close()

	ring, err := pii.NewSecretManagerSource(client, cfg.PIISecretProject, cfg.PIISecretID, cfg.PIISecretVersions).Keyring(ctx)
	if err != nil {
		return nil, err
	}
	logger.Printf("loaded %d PII keys from secret manager (active %s)", len(ring.IDs()), ring.ActiveID())
	return ring, nil
}
