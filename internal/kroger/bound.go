package kroger

import (
	"context"
	"encoding/json"
)

// TokenClient binds a Client to one access token so it can be passed where a
// catalog or cart capability is expected.
type TokenClient struct {
	client *Client
	token  string
}

// WithToken returns a TokenClient for token.
func (c *Client) WithToken(token string) *TokenClient {
	return &TokenClient{client: c, token: token}
}

func (t *TokenClient) SearchProducts(ctx context.Context, term, locationID string, limit int) ([]Product, error) {
	return t.client.SearchProducts(ctx, t.token, term, locationID, limit)
}

func (t *TokenClient) GetProduct(ctx context.Context, productID, locationID string) (json.RawMessage, error) {
	return t.client.GetProduct(ctx, t.token, productID, locationID)
}

// AddToCart adds an item, discarding the response body.
func (t *TokenClient) AddToCart(ctx context.Context, upc string, quantity int, modality string) error {
	_, err := t.client.AddToCart(ctx, t.token, upc, quantity, modality)
	return err
}
