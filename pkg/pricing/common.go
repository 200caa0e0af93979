package pricing

import (
	"fmt"
	"strconv"

	"github.com/younsl/ebsmig/pkg/utils"
)

// updateStats must be called with c.mu held
func (c *Catalog) updateStats(region, statType string) {
	stats, ok := c.stats[region]
	if !ok {
		stats = &APIStats{}
		c.stats[region] = stats
	}

	switch statType {
	case "success":
		stats.Success++
	case "failure":
		stats.Failure++
	case "cache":
		stats.Cache++
	}
}

// GetRegionDescriptiveName returns the human-readable region name used in AWS Pricing API
func GetRegionDescriptiveName(region string) (string, bool) {
	return utils.GetRegionDescriptiveName(region)
}

// extractPricePerGBMonth extracts the on-demand per GB-month price from a price list entry
func extractPricePerGBMonth(product string) (float64, error) {
	priceData, err := utils.ParseJSON(product)
	if err != nil {
		return 0, fmt.Errorf("error parsing pricing data: %w", err)
	}

	// The structure of the pricing data can be complex and may change
	onDemand, err := utils.GetNestedMap(priceData, "terms", "OnDemand")
	if err != nil {
		return 0, fmt.Errorf("OnDemand terms not found: %w", err)
	}

	skuOffer, err := utils.FirstNestedMap(onDemand)
	if err != nil {
		return 0, fmt.Errorf("no SKU offer found: %w", err)
	}

	priceDimensions, err := utils.GetNestedMap(skuOffer, "priceDimensions")
	if err != nil {
		return 0, err
	}

	dimension, err := utils.FirstNestedMap(priceDimensions)
	if err != nil {
		return 0, fmt.Errorf("no price dimension found: %w", err)
	}

	// Check that this is a per GB-month price
	unit, _ := utils.GetNestedString(dimension, "unit")
	if unit != "GB-Mo" && unit != "GB-month" {
		return 0, fmt.Errorf("unexpected pricing unit: %s", unit)
	}

	usd, err := utils.GetNestedString(dimension, "pricePerUnit", "USD")
	if err != nil {
		return 0, fmt.Errorf("USD price not found: %w", err)
	}

	price, err := strconv.ParseFloat(usd, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing price: %w", err)
	}

	return price, nil
}
