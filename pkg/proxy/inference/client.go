package inference

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultGenerateTimeout = 90 * time.Second
	DefaultHealthTimeout   = 5 * time.Second
)

// Client performs a single inference attempt against an endpoint. It never
// retries.
type Client interface {
	Call(ctx context.Context, endpoint Endpoint, payload Payload) Outcome
}

// ProviderClient dispatches each call to the client registered for the
// endpoint's provider.
type ProviderClient struct {
	clients map[Provider]Client
}

var _ Client = (*ProviderClient)(nil)

func NewProviderClient(clients map[Provider]Client) *ProviderClient {
	return &ProviderClient{
		clients: clients,
	}
}

func (c *ProviderClient) Call(ctx context.Context, endpoint Endpoint, payload Payload) Outcome {
	client, ok := c.clients[endpoint.Provider]
	if !ok {
		return Fatal(fmt.Sprintf("no client for provider %q", endpoint.Provider))
	}

	return client.Call(ctx, endpoint, payload)
}
