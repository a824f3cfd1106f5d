package secrets

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"
)

var (
	// ErrInvalidReference indicates a reference that is not a secret:// URI.
	ErrInvalidReference = errors.New("secrets: invalid reference")
	// ErrNoProject indicates a short reference with no project to resolve it against.
	ErrNoProject = errors.New("secrets: project not configured")
)

var secretManagerClientFactory = func(ctx context.Context) (secretManagerClient, error) {
	return secretmanager.NewClient(ctx)
}

type secretManagerClient interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

// Resolver turns secret:// references into values using Google Secret Manager. The client is
// dialed on first use, so deployments without references never need credentials.
type Resolver struct {
	project string
	logger  *zap.Logger

	mu         sync.Mutex
	client     secretManagerClient
	ownsClient bool
	cache      map[string]string
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithProject sets the project used for short references such as secret://session-key.
func WithProject(projectID string) Option {
	return func(r *Resolver) {
		r.project = strings.TrimSpace(projectID)
	}
}

// WithLogger sets the logger used for diagnostic output.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSecretManagerClient injects a preconfigured client.
func WithSecretManagerClient(client secretManagerClient) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

// NewResolver returns a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		logger: zap.NewNop(),
		cache:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveSecret satisfies config.SecretResolver.
func (r *Resolver) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return r.Resolve(ctx, ref)
}

// Resolve returns the payload behind ref. Accepted forms are secret://<name>[?version=&project=]
// and secret://projects/<p>/secrets/<name>[/versions/<v>]. Values are cached per resource.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	resource, err := r.resourceName(ref)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.cache[resource]; ok {
		return v, nil
	}
	if r.client == nil {
		client, err := secretManagerClientFactory(ctx)
		if err != nil {
			return "", fmt.Errorf("secrets: secret manager client unavailable: %w", err)
		}
		r.client = client
		r.ownsClient = true
	}

	resp, err := r.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: resource})
	if err != nil {
		return "", fmt.Errorf("secrets: fetch failed for %s: %w", resource, err)
	}
	if resp == nil || resp.Payload == nil {
		return "", fmt.Errorf("secrets: empty payload for %s", resource)
	}
	value := string(resp.Payload.GetData())
	r.cache[resource] = value
	r.logger.Debug("secret resolved", zap.String("resource", resource))
	return value, nil
}

// Close releases the client when the resolver dialed it.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ownsClient && r.client != nil {
		err := r.client.Close()
		r.client = nil
		r.ownsClient = false
		return err
	}
	return nil
}

func (r *Resolver) resourceName(ref string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil || u.Scheme != "secret" {
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	path := strings.Trim(u.Host+u.Path, "/")
	if path == "" {
		return "", fmt.Errorf("%w: missing secret name in %q", ErrInvalidReference, ref)
	}

	if strings.HasPrefix(path, "projects/") {
		parts := strings.Split(path, "/")
		switch {
		case len(parts) == 4 && parts[2] == "secrets":
			return path + "/versions/latest", nil
		case len(parts) == 6 && parts[2] == "secrets" && parts[4] == "versions":
			return path, nil
		}
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}

	query := u.Query()
	project := strings.TrimSpace(query.Get("project"))
	if project == "" {
		project = r.project
	}
	if project == "" {
		return "", fmt.Errorf("%w for %q", ErrNoProject, ref)
	}
	version := strings.TrimSpace(query.Get("version"))
	if version == "" {
		version = "latest"
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/%s", project, path, version), nil
}
