package pricing

// PricingSource represents the source of pricing information
type PricingSource string

const (
	// PricingSourceAPI indicates pricing data came from AWS API
	PricingSourceAPI PricingSource = "API"

	// PricingSourceCache indicates pricing data came from cache
	PricingSourceCache PricingSource = "Cache"

	// PricingSourceDefault indicates pricing data came from hardcoded defaults
	PricingSourceDefault PricingSource = "Default"

	// PricingSourceNA indicates pricing data is not available
	PricingSourceNA PricingSource = "N/A"
)

// Default EBS volume prices in USD per GB-month
// These are fallback prices if Pricing API fails
var DefaultEBSPrices = map[string]map[string]float64{
	"us-east-1": { // US East (N. Virginia)
		"gp2":      0.10,
		"gp3":      0.08,
		"io1":      0.125,
		"standard": 0.05,
	},
	"us-west-2": { // US West (Oregon)
		"gp2":      0.10,
		"gp3":      0.08,
		"io1":      0.125,
		"standard": 0.05,
	},
	"eu-west-1": { // EU (Ireland)
		"gp2":      0.11,
		"gp3":      0.088,
		"io1":      0.138,
		"standard": 0.055,
	},
	"ap-northeast-2": { // Asia Pacific (Seoul)
		"gp2":      0.114,
		"gp3":      0.0912,
		"io1":      0.142,
		"standard": 0.057,
	},
}

// APIStats counts pricing lookups for one region
type APIStats struct {
	Success int
	Failure int
	Cache   int
}

// Total returns the number of pricing API calls made
func (s APIStats) Total() int {
	return s.Success + s.Failure
}
