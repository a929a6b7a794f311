package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/ai-job-hunter/internal/config"
	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

func TestFormatAchievements(t *testing.T) {
	block := FormatAchievements([]config.Achievement{
		{Name: "Payment pipeline rewrite", Keywords: []string{"go", "throughput"},
			Bullets: []string{"Cut p99 latency by 60%"}},
		{Name: "On-call overhaul"},
	})
	assert.Contains(t, block, "- Payment pipeline rewrite (go, throughput)")
	assert.Contains(t, block, "  * Cut p99 latency by 60%")
	assert.Contains(t, block, "- On-call overhaul\n")
}

func TestFormatPreferences(t *testing.T) {
	block := FormatPreferences(config.Preferences{
		TargetPositions: []string{"Go Engineer"},
		RemoteOnly:      true,
		SalaryMinimum:   150000,
		SalaryCurrency:  "USD",
	})
	assert.Contains(t, block, "Target positions: Go Engineer")
	assert.Contains(t, block, "Remote only: yes")
	assert.Contains(t, block, "Minimum salary: 150000 USD")
	assert.NotContains(t, block, "Locations:")
}

func TestBuildScoringPrompt(t *testing.T) {
	job := domain.Job{
		Title: "Senior Go Engineer", Company: "Acme", Location: "Remote",
		SalaryText: "$150k-200k", Source: "greenhouse",
		Description: "Own the payments platform.",
	}
	prompt := BuildScoringPrompt("ACH_BLOCK", "PREF_BLOCK", job)
	assert.Contains(t, prompt, "ACH_BLOCK")
	assert.Contains(t, prompt, "PREF_BLOCK")
	assert.Contains(t, prompt, "Title: Senior Go Engineer")
	assert.Contains(t, prompt, "Salary: $150k-200k")
	assert.Contains(t, prompt, "Own the payments platform.")
	assert.Contains(t, prompt, `"score": <0-100 integer>`)

	noSalary := BuildScoringPrompt("", "", domain.Job{Title: "X", Company: "Y"})
	assert.NotContains(t, noSalary, "Salary:")
}
