package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
)

// apiTimeout bounds a single Pricing API lookup
const apiTimeout = 5 * time.Second

// errUnknownLocation is returned for regions without a Pricing API location name
var errUnknownLocation = errors.New("no pricing location for region")

// EBSPricePerGB returns the price per GB-month for a volume type in a region.
// API failures fall back to DefaultEBSPrices and the fallback is cached, so a
// failing API is called once per volume type and region. Regions known to
// neither the API location table nor DefaultEBSPrices are PricingSourceNA.
func (c *Catalog) EBSPricePerGB(ctx context.Context, volumeType, region string) (float64, PricingSource) {
	cacheKey := fmt.Sprintf("ebs:%s:%s", volumeType, region)

	c.mu.Lock()
	if price, found := c.cache[cacheKey]; found {
		c.updateStats(region, "cache")
		c.mu.Unlock()
		return price, PricingSourceCache
	}
	if _, found := c.unpriced[cacheKey]; found {
		c.mu.Unlock()
		return 0, PricingSourceNA
	}
	c.mu.Unlock()

	if c.client != nil {
		price, err := c.getEBSPriceFromAPI(ctx, volumeType, region)

		c.mu.Lock()
		if err == nil {
			c.updateStats(region, "success")
			c.cache[cacheKey] = price
			c.mu.Unlock()
			return price, PricingSourceAPI
		}
		// No API call is made for a region without a location name
		if !errors.Is(err, errUnknownLocation) {
			c.updateStats(region, "failure")
		}
		c.mu.Unlock()
	}

	price, source := defaultEBSPrice(volumeType, region)

	c.mu.Lock()
	if source == PricingSourceNA {
		c.unpriced[cacheKey] = struct{}{}
	} else {
		c.cache[cacheKey] = price
	}
	c.mu.Unlock()
	return price, source
}

// defaultEBSPrice looks up the fallback price. Regions missing from
// DefaultEBSPrices have no fallback.
func defaultEBSPrice(volumeType, region string) (float64, PricingSource) {
	regionPrices, found := DefaultEBSPrices[region]
	if !found {
		return 0, PricingSourceNA
	}
	if price, found := regionPrices[volumeType]; found {
		return price, PricingSourceDefault
	}
	return 0, PricingSourceNA
}

// MonthlySavings estimates the monthly saving of moving sizeGiB from one volume type to another.
// The source is the least authoritative of the two price lookups.
func (c *Catalog) MonthlySavings(ctx context.Context, fromType, toType string, sizeGiB int, region string) (float64, PricingSource) {
	fromPrice, fromSource := c.EBSPricePerGB(ctx, fromType, region)
	toPrice, toSource := c.EBSPricePerGB(ctx, toType, region)

	if fromSource == PricingSourceNA || toSource == PricingSourceNA {
		return 0, PricingSourceNA
	}

	source := fromSource
	if rank(toSource) > rank(fromSource) {
		source = toSource
	}
	return float64(sizeGiB) * (fromPrice - toPrice), source
}

func rank(s PricingSource) int {
	switch s {
	case PricingSourceAPI:
		return 0
	case PricingSourceCache:
		return 1
	case PricingSourceDefault:
		return 2
	default:
		return 3
	}
}

// getEBSPriceFromAPI retrieves EBS volume pricing from the AWS Pricing API
func (c *Catalog) getEBSPriceFromAPI(ctx context.Context, volumeType, region string) (float64, error) {
	location, ok := GetRegionDescriptiveName(region)
	if !ok {
		return 0, fmt.Errorf("region %s: %w", region, errUnknownLocation)
	}

	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	filters := []types.Filter{
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("volumeApiName"),
			Value: aws.String(volumeType),
		},
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("location"),
			Value: aws.String(location),
		},
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("productFamily"),
			Value: aws.String("Storage"),
		},
	}

	products, err := c.getPricingProducts(ctx, "AmazonEC2", filters, "EBS "+volumeType, region)
	if err != nil {
		return 0, err
	}

	// Find exact match for the volume type
	for _, product := range products {
		if productVolumeType(product) == volumeType {
			return extractPricePerGBMonth(product)
		}
	}

	return 0, fmt.Errorf("no exact match found for EBS volume type %s in region %s", volumeType, region)
}

// productVolumeType returns the volumeApiName attribute of a price list entry
func productVolumeType(product string) string {
	var priceData struct {
		Product struct {
			Attributes struct {
				VolumeAPIName string `json:"volumeApiName"`
			} `json:"attributes"`
		} `json:"product"`
	}
	if err := json.Unmarshal([]byte(product), &priceData); err != nil {
		return ""
	}
	return priceData.Product.Attributes.VolumeAPIName
}
