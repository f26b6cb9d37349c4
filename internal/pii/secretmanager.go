package pii

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
)

// SecretAccessor is the part of the Secret Manager client used to fetch key material.
type SecretAccessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

var _ SecretAccessor = (*secretmanager.Client)(nil)

// SecretManagerSource reads PII key secrets from versions of one secret.
// The first version is the active key, the rest are retired keys kept for decryption.
type SecretManagerSource struct {
	client    SecretAccessor
	projectID string
	secretID  string
	versions  []string
}

func NewSecretManagerSource(client SecretAccessor, projectID, secretID string, versions []string) *SecretManagerSource {
	return &SecretManagerSource{client: client, projectID: projectID, secretID: secretID, versions: versions}
}

// Keyring fetches every configured version. Key ids are the resolved version numbers,
// so "latest" maps to a stable id.
func (s *SecretManagerSource) Keyring(ctx context.Context) (*Keyring, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("secret manager source not configured")
	}
	prj := strings.TrimSpace(s.projectID)
	if prj == "" || strings.TrimSpace(s.secretID) == "" {
		return nil, errors.New("secret manager project and secret id are required")
	}
	versions := s.versions
	if len(versions) == 0 {
		versions = []string{"latest"}
	}

	secrets := make(map[string]string, len(versions))
	active := ""
	for i, ver := range versions {
		name := "projects/" + prj + "/secrets/" + s.secretID + "/versions/" + ver
		resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
		if err != nil {
			return nil, fmt.Errorf("access secret %s: %w", name, err)
		}
		if resp == nil || resp.GetPayload() == nil || len(resp.GetPayload().GetData()) == 0 {
			return nil, fmt.Errorf("empty payload for %s", name)
		}

		id := ver
		if resp.GetName() != "" {
			id = path.Base(resp.GetName())
		}
		secrets[id] = strings.TrimSpace(string(resp.GetPayload().GetData()))
		if i == 0 {
			active = id
		}
	}
	return NewKeyring(active, secrets)
}
