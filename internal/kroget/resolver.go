package kroget

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hay-kot/kroget/internal/core/proposal"
	"github.com/hay-kot/kroget/internal/core/upc"
	"github.com/hay-kot/kroget/internal/kroger"
)

const (
	// SearchLimit is the number of products requested per staple.
	SearchLimit = 5
	// CandidateLimit is the number of search results inspected for UPCs.
	CandidateLimit = 3
)

// Catalog searches products and fetches product details. kroger.TokenClient
// satisfies it.
type Catalog interface {
	SearchProducts(ctx context.Context, term, locationID string, limit int) ([]kroger.Product, error)
	GetProduct(ctx context.Context, productID, locationID string) (json.RawMessage, error)
}

// Candidate is one inspected search result.
type Candidate struct {
	ProductID   string
	Description string
	UPCs        []string
}

// Resolution is the outcome of resolving a search term. An empty ChosenUPC
// means nothing could be matched; that is a valid result, not an error.
type Resolution struct {
	ChosenUPC    string
	Candidates   []Candidate
	Alternatives []proposal.Alternative
}

// Resolver turns a search term into a chosen UPC and alternatives.
type Resolver struct {
	catalog Catalog
	log     zerolog.Logger
}

// NewResolver creates a Resolver over catalog.
func NewResolver(catalog Catalog, logger zerolog.Logger) *Resolver {
	return &Resolver{catalog: catalog, log: logger}
}

// Resolve searches for term at locationID and inspects the top results in
// search order. A search failure is returned as is. Detail lookups that fail
// leave the candidate without UPCs, and candidates without UPCs are left out
// of the alternatives. The chosen UPC is the first UPC of the top result.
func (r *Resolver) Resolve(ctx context.Context, term, locationID string) (Resolution, error) {
	products, err := r.catalog.SearchProducts(ctx, term, locationID, SearchLimit)
	if err != nil {
		return Resolution{}, fmt.Errorf("search %q: %w", term, err)
	}

	res := Resolution{
		Alternatives: []proposal.Alternative{},
	}

	for i, p := range products {
		if i == CandidateLimit {
			break
		}

		c := Candidate{
			ProductID:   p.ProductID,
			Description: p.Description,
			UPCs:        r.candidateUPCs(ctx, p, locationID),
		}
		res.Candidates = append(res.Candidates, c)

		if len(c.UPCs) == 0 {
			continue
		}
		if len(res.Alternatives) < proposal.MaxAlternatives {
			res.Alternatives = append(res.Alternatives, proposal.Alternative{
				UPC:         c.UPCs[0],
				Description: c.Description,
			})
		}
	}

	if len(res.Candidates) > 0 {
		res.ChosenUPC = upc.Pick(res.Candidates[0].UPCs)
	}

	return res, nil
}

// candidateUPCs returns the product's embedded UPCs, falling back to a
// detail fetch.
func (r *Resolver) candidateUPCs(ctx context.Context, p kroger.Product, locationID string) []string {
	if upcs := p.EmbeddedUPCs(); len(upcs) > 0 {
		return upcs
	}

	payload, err := r.catalog.GetProduct(ctx, p.ProductID, locationID)
	if err != nil {
		r.log.Debug().Err(err).Str("product_id", p.ProductID).Msg("product detail lookup failed")
		return nil
	}

	upcs, err := upc.Extract(payload)
	if err != nil {
		r.log.Debug().Err(err).Str("product_id", p.ProductID).Msg("product detail not parseable")
		return nil
	}
	return upcs
}
