package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/ai-job-hunter/internal/config"
	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

func TestPreFilterBlacklistedCompany(t *testing.T) {
	f := NewPreFilter(config.Preferences{BlacklistCompanies: []string{"Revature"}}, nil)
	reject, reason := f.ShouldReject(domain.Job{Company: "revature", Description: "great role"})
	assert.True(t, reject)
	assert.Equal(t, "Blacklisted company: revature", reason)
}

func TestPreFilterStoreBlacklistUnion(t *testing.T) {
	f := NewPreFilter(config.Preferences{}, []string{"Shady Staffing"})
	reject, _ := f.ShouldReject(domain.Job{Company: "Shady Staffing"})
	assert.True(t, reject)
}

func TestPreFilterDefaultKeywords(t *testing.T) {
	f := NewPreFilter(config.Preferences{}, nil)
	cases := map[string]string{
		"This role requires an active Security Clearance": "Reject keyword found: 'security clearance'",
		"W2 through our vendor only":                      "Reject keyword found: 'w2 through our vendor'",
		"This is a Corp to Corp opportunity":              "Reject keyword found: 'corp to corp'",
	}
	for desc, want := range cases {
		reject, reason := f.ShouldReject(domain.Job{Company: "Acme", Description: desc})
		assert.True(t, reject, desc)
		assert.Equal(t, want, reason)
	}
}

func TestPreFilterUserKeywordsUnioned(t *testing.T) {
	f := NewPreFilter(config.Preferences{RejectKeywords: []string{"blockchain"}}, nil)
	reject, reason := f.ShouldReject(domain.Job{Company: "Acme", Description: "Blockchain experience required"})
	assert.True(t, reject)
	assert.Equal(t, "Reject keyword found: 'blockchain'", reason)
}

func TestPreFilterPasses(t *testing.T) {
	f := NewPreFilter(config.Preferences{}, nil)
	reject, reason := f.ShouldReject(domain.Job{
		Company:     "Acme",
		Description: "Remote-friendly role building Go services, visa sponsorship available",
	})
	assert.False(t, reject)
	assert.Empty(t, reason)
}
