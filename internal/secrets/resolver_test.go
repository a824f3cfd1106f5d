package secrets

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecretClient struct {
	mu     sync.Mutex
	values map[string]string
	calls  map[string]int
	closed bool
}

func newFakeSecretClient() *fakeSecretClient {
	return &fakeSecretClient{values: map[string]string{}, calls: map[string]int{}}
}

func (f *fakeSecretClient) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[req.GetName()]++
	v, ok := f.values[req.GetName()]
	if !ok {
		return nil, errors.New("not found")
	}
	return &secretmanagerpb.AccessSecretVersionResponse{
		Name:    req.GetName(),
		Payload: &secretmanagerpb.SecretPayload{Data: []byte(v)},
	}, nil
}

func (f *fakeSecretClient) Close() error {
	f.closed = true
	return nil
}

func TestResolveCachesRemoteSecret(t *testing.T) {
	client := newFakeSecretClient()
	resource := "projects/talia/secrets/session-key/versions/latest"
	client.values[resource] = "remote-secret"
	r := NewResolver(WithSecretManagerClient(client), WithProject("talia"))

	for i := 0; i < 2; i++ {
		got, err := r.Resolve(context.Background(), "secret://session-key")
		require.NoError(t, err)
		assert.Equal(t, "remote-secret", got)
	}
	assert.Equal(t, 1, client.calls[resource])
}

func TestResolveReferenceForms(t *testing.T) {
	client := newFakeSecretClient()
	client.values["projects/other/secrets/k/versions/3"] = "pinned"
	client.values["projects/p/secrets/k/versions/latest"] = "full"
	client.values["projects/p/secrets/k/versions/7"] = "full-pinned"
	r := NewResolver(WithSecretManagerClient(client))
	ctx := context.Background()

	got, err := r.ResolveSecret(ctx, "secret://k?project=other&version=3")
	require.NoError(t, err)
	assert.Equal(t, "pinned", got)

	got, err = r.Resolve(ctx, "secret://projects/p/secrets/k")
	require.NoError(t, err)
	assert.Equal(t, "full", got)

	got, err = r.Resolve(ctx, "secret://projects/p/secrets/k/versions/7")
	require.NoError(t, err)
	assert.Equal(t, "full-pinned", got)
}

func TestResolveErrors(t *testing.T) {
	r := NewResolver(WithSecretManagerClient(newFakeSecretClient()))
	ctx := context.Background()

	_, err := r.Resolve(ctx, "https://example.com")
	assert.ErrorIs(t, err, ErrInvalidReference)
	_, err = r.Resolve(ctx, "secret://")
	assert.ErrorIs(t, err, ErrInvalidReference)
	_, err = r.Resolve(ctx, "secret://short")
	assert.ErrorIs(t, err, ErrNoProject)
	_, err = r.Resolve(ctx, "secret://projects/p/secrets/missing")
	assert.Error(t, err)
}

func TestCloseOnlyClosesOwnedClient(t *testing.T) {
	injected := newFakeSecretClient()
	r := NewResolver(WithSecretManagerClient(injected))
	require.NoError(t, r.Close())
	assert.False(t, injected.closed)

	dialed := newFakeSecretClient()
	dialed.values["projects/p/secrets/k/versions/latest"] = "v"
	orig := secretManagerClientFactory
	secretManagerClientFactory = func(context.Context) (secretManagerClient, error) { return dialed, nil }
	t.Cleanup(func() { secretManagerClientFactory = orig })

	lazy := NewResolver(WithProject("p"))
	_, err := lazy.Resolve(context.Background(), "secret://k")
	require.NoError(t, err)
	require.NoError(t, lazy.Close())
	assert.True(t, dialed.closed)
}
