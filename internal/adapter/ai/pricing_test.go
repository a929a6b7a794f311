package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCost(t *testing.T) {
	assert.Equal(t, 0.0, Cost("glm-4-flash", 1_000_000, 1_000_000))
	assert.InDelta(t, 0.15+0.6, Cost("gpt-4o-mini", 1_000_000, 1_000_000), 1e-9)
	assert.InDelta(t, 0.15*0.5, Cost("gpt-4o-mini", 500_000, 0), 1e-9)
}

func TestPricingForPrefixFallback(t *testing.T) {
	assert.Equal(t, PricingFor("gpt-4o-mini"), PricingFor("gpt-4o-mini-2024-07-18"))
	assert.Equal(t, defaultPricing, PricingFor("some-unknown-model"))
}
