package secrets

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// GCPSM fetches secrets from Google Secret Manager.
type GCPSM struct {
	client    *secretmanager.Client
	projectID string
}

// NewGCPSM creates a Secret Manager backed provider.
func NewGCPSM(client *secretmanager.Client, projectID string) (*GCPSM, error) {
	if client == nil {
		return nil, fmt.Errorf("secret manager client is required")
	}
	if projectID == "" {
		return nil, fmt.Errorf("project id is required")
	}
	return &GCPSM{client: client, projectID: projectID}, nil
}

// Fetch reads the latest version of the named secret. name may be a bare
// secret id or a full projects/*/secrets/*/versions/* resource name.
func (p *GCPSM) Fetch(ctx context.Context, name string) ([]byte, error) {
	resource := name
	if !strings.HasPrefix(name, "projects/") {
		resource = fmt.Sprintf("projects/%s/secrets/%s/versions/latest", p.projectID, name)
	}

	result, err := p.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: resource,
	})
	if err != nil {
		return nil, fmt.Errorf("access secret version %s: %w", resource, err)
	}
	return result.GetPayload().GetData(), nil
}
