package kroger

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/hay-kot/kroget/internal/core/upc"
)

// Product is a search result. Items holds the raw per-item records, which
// carry the UPC and pricing.
type Product struct {
	ProductID   string           `json:"productId"`
	UPC         string           `json:"upc,omitempty"`
	Description string           `json:"description"`
	Brand       string           `json:"brand"`
	Items       []map[string]any `json:"items"`
}

// EmbeddedUPCs returns the UPCs of the product's embedded items in order.
func (p Product) EmbeddedUPCs() []string {
	return upc.FromItems(p.Items)
}

// Price returns the regular price of the first item that has one.
func (p Product) Price() (float64, bool) {
	for _, it := range p.Items {
		price, ok := it["price"].(map[string]any)
		if !ok {
			continue
		}
		if v, ok := price["regular"].(float64); ok {
			return v, true
		}
	}
	return 0, false
}

// Address is a store's postal address.
type Address struct {
	AddressLine1 string `json:"addressLine1"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
}

func (a Address) String() string {
	parts := []string{}
	for _, s := range []string{a.AddressLine1, a.City, strings.TrimSpace(a.State + " " + a.ZipCode)} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// Location is a store.
type Location struct {
	LocationID string  `json:"locationId"`
	Chain      string  `json:"chain"`
	Name       string  `json:"name"`
	Address    Address `json:"address"`
}

// LocationQuery filters a location search.
type LocationQuery struct {
	ZipCode       string
	RadiusInMiles int
	Limit         int
	Chain         string
}

func (q LocationQuery) values() url.Values {
	v := url.Values{}
	if q.ZipCode != "" {
		v.Set("filter.zipCode.near", q.ZipCode)
	}
	if q.RadiusInMiles > 0 {
		v.Set("filter.radiusInMiles", strconv.Itoa(q.RadiusInMiles))
	}
	if q.Limit > 0 {
		v.Set("filter.limit", strconv.Itoa(q.Limit))
	}
	if q.Chain != "" {
		v.Set("filter.chain", q.Chain)
	}
	return v
}

// Profile is the authenticated user's identity.
type Profile struct {
	ID string `json:"id"`
}
