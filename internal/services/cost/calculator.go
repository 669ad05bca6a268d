package cost

import (
	"fmt"
	"strings"
)

// Price is the USD cost of one million tokens.
type Price struct {
	Input  float64
	Output float64
}

// Prices are published per model family; versioned model ids match the
// longest family name they contain.
var prices = map[string]map[string]Price{
	// https://www.anthropic.com/pricing#api
	"anthropic": {
		"claude-3-5-sonnet": {Input: 3.00, Output: 15.00},
		"claude-3-5-haiku":  {Input: 0.80, Output: 4.00},
		"claude-3-haiku":    {Input: 0.25, Output: 1.25},
		"claude-3-opus":     {Input: 15.00, Output: 75.00},
	},
	// https://ai.google.dev/gemini-api/docs/pricing
	"gemini": {
		"gemini-2.5-flash": {Input: 0.30, Output: 2.50},
		"gemini-2.5-pro":   {Input: 1.25, Output: 10.00},
		"gemini-1.5-flash": {Input: 0.075, Output: 0.30},
		"gemini-1.5-pro":   {Input: 1.25, Output: 5.00},
	},
}

// Calculator turns reported token counts into an estimated cost for display.
type Calculator struct {
	table map[string]map[string]Price
}

func NewCalculator() *Calculator {
	return &Calculator{table: prices}
}

// EstimateCost returns 0 for unknown providers or models.
func (c *Calculator) EstimateCost(provider, model string, inputTokens, outputTokens int) float64 {
	price, err := c.PriceFor(provider, model)
	if err != nil {
		return 0
	}

	return float64(inputTokens)/1_000_000*price.Input + float64(outputTokens)/1_000_000*price.Output
}

// PriceFor looks up a model by exact id first, then by the longest family
// name contained in the id.
func (c *Calculator) PriceFor(provider, model string) (Price, error) {
	provider = strings.ToLower(provider)
	model = strings.ToLower(model)

	byModel, ok := c.table[provider]
	if !ok {
		return Price{}, fmt.Errorf("provider %s not found", provider)
	}

	if p, ok := byModel[model]; ok {
		return p, nil
	}

	best := ""
	for family := range byModel {
		if strings.Contains(model, family) && len(family) > len(best) {
			best = family
		}
	}
	if best == "" {
		return Price{}, fmt.Errorf("model %s not found for provider %s", model, provider)
	}
	return byModel[best], nil
}
