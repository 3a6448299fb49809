package clients

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/voltkart/storefront/internal/domain"
)

// CatalogClient wraps the product catalog service. The stores embed the
// snapshots it returns and never re-fetch on their own; staleness is
// resolved by explicit refresh/validate calls.
type CatalogClient struct {
	restClient
}

func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{newRESTClient("catalog-service", baseURL, timeout)}
}

func (c *CatalogClient) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	if err := c.getJSON(ctx, "/products/"+url.PathEscape(id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

type productListResponse struct {
	Products []domain.Product `json:"products"`
}

func (c *CatalogClient) GetProducts(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	var resp productListResponse
	path := "/products?ids=" + url.QueryEscape(strings.Join(ids, ","))
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}

	out := make(map[string]domain.Product, len(resp.Products))
	for _, p := range resp.Products {
		out[p.ID] = p
	}
	return out, nil
}
