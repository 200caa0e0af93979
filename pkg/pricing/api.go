package pricing

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
)

// pricingRegion is where the Pricing API is served. It is only available in us-east-1 and ap-south-1.
const pricingRegion = "us-east-1"

// ProductsAPI is the subset of the Pricing client used for EBS prices
type ProductsAPI interface {
	GetProducts(ctx context.Context, params *pricing.GetProductsInput, optFns ...func(*pricing.Options)) (*pricing.GetProductsOutput, error)
}

// Catalog looks up EBS prices, caching them per volume type and region.
// A Catalog without a client only serves the default price table.
type Catalog struct {
	client ProductsAPI

	mu       sync.Mutex
	cache    map[string]float64
	unpriced map[string]struct{}
	stats    map[string]*APIStats
}

// NewCatalog creates a Catalog backed by client, which may be nil
func NewCatalog(client ProductsAPI) *Catalog {
	return &Catalog{
		client:   client,
		cache:    make(map[string]float64),
		unpriced: make(map[string]struct{}),
		stats:    make(map[string]*APIStats),
	}
}

// NewCatalogFromConfig creates a Catalog using the Pricing API with cfg's credentials
func NewCatalogFromConfig(cfg aws.Config) *Catalog {
	pricingCfg := cfg.Copy()
	pricingCfg.Region = pricingRegion
	return NewCatalog(pricing.NewFromConfig(pricingCfg))
}

// Endpoint returns the Pricing API endpoint used by catalogs created from a config
func Endpoint() string {
	return fmt.Sprintf("https://api.pricing.%s.amazonaws.com", pricingRegion)
}

// getPricingProducts gets multiple pricing products from AWS API
func (c *Catalog) getPricingProducts(ctx context.Context, serviceCode string, filters []types.Filter, resourceType, region string) ([]string, error) {
	if c.client == nil {
		return nil, fmt.Errorf("AWS pricing client not initialized")
	}

	input := &pricing.GetProductsInput{
		ServiceCode: aws.String(serviceCode),
		Filters:     filters,
		MaxResults:  aws.Int32(100),
	}

	resp, err := c.client.GetProducts(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("error calling AWS Pricing API: %w", err)
	}

	if len(resp.PriceList) == 0 {
		return nil, fmt.Errorf("no pricing found for %s in region %s", resourceType, region)
	}

	return resp.PriceList, nil
}
