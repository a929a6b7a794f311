package ai

import "strings"

// modelPricing is USD per million tokens.
type modelPricing struct {
	InputPerM  float64
	OutputPerM float64
}

// pricingTable covers the models the registry hands out. Unknown models fall
// back to defaultPricing so cost accounting never silently reports zero.
var pricingTable = map[string]modelPricing{
	"glm-4-flash":               {InputPerM: 0, OutputPerM: 0},
	"glm-4-air":                 {InputPerM: 0.2, OutputPerM: 1.1},
	"glm-4.6":                   {InputPerM: 0.6, OutputPerM: 2.2},
	"gpt-4o-mini":               {InputPerM: 0.15, OutputPerM: 0.6},
	"gpt-4o":                    {InputPerM: 2.5, OutputPerM: 10},
	"llama-3.3-70b-versatile":   {InputPerM: 0.59, OutputPerM: 0.79},
	"claude-3-5-haiku-20241022": {InputPerM: 0.8, OutputPerM: 4},
	"claude-sonnet-4-20250514":  {InputPerM: 3, OutputPerM: 15},
}

var defaultPricing = modelPricing{InputPerM: 1, OutputPerM: 3}

// PricingFor returns the pricing row for a model. Versioned model names match
// their unversioned prefix; the longest prefix wins.
func PricingFor(model string) modelPricing {
	if p, ok := pricingTable[model]; ok {
		return p
	}
	best := ""
	for name := range pricingTable {
		if strings.HasPrefix(model, name) && len(name) > len(best) {
			best = name
		}
	}
	if best != "" {
		return pricingTable[best]
	}
	return defaultPricing
}

// Cost converts token usage to USD for a model.
func Cost(model string, inputTokens, outputTokens int64) float64 {
	p := PricingFor(model)
	return float64(inputTokens)/1e6*p.InputPerM + float64(outputTokens)/1e6*p.OutputPerM
}
