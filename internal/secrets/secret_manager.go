package secrets

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

// Accessor reads secret payloads.
type Accessor interface {
	AccessSecret(ctx context.Context, name string) (string, error)
}

// SecretManagerAccessor reads secrets from Google Secret Manager.
type SecretManagerAccessor struct {
	client    *secretmanager.Client
	projectID string
}

// NewSecretManagerAccessor creates a Secret Manager backed Accessor. opts are
// passed to the underlying client, e.g. option.WithCredentialsFile.
func NewSecretManagerAccessor(ctx context.Context, projectID string, opts ...option.ClientOption) (*SecretManagerAccessor, error) {
	if projectID == "" {
		return nil, fmt.Errorf("GCP project ID is not set")
	}
	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}
	return &SecretManagerAccessor{client: client, projectID: projectID}, nil
}

// AccessSecret returns the payload of the latest version of name. name may be
// a bare secret id or a full "projects/.../secrets/..." resource.
func (a *SecretManagerAccessor) AccessSecret(ctx context.Context, name string) (string, error) {
	result, err := a.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: ResourceName(a.projectID, name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret version: %w", err)
	}
	return string(result.Payload.Data), nil
}

func (a *SecretManagerAccessor) Close() error {
	return a.client.Close()
}

// ResourceName expands name to a version resource, defaulting to "latest".
func ResourceName(projectID, name string) string {
	if !strings.HasPrefix(name, "projects/") {
		name = fmt.Sprintf("projects/%s/secrets/%s", projectID, name)
	}
	if !strings.Contains(name, "/versions/") {
		name += "/versions/latest"
	}
	return name
}

// ResolveJWTSecret returns secret unchanged when set, otherwise reads
// resource through accessor.
func ResolveJWTSecret(ctx context.Context, secret, resource string, accessor Accessor) (string, error) {
	if secret != "" {
		return secret, nil
	}
	if accessor == nil {
		return "", fmt.Errorf("no secret accessor configured for %s", resource)
	}
	value, err := accessor.AccessSecret(ctx, resource)
	if err != nil {
		return "", err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("secret %s is empty", resource)
	}
	return value, nil
}
