package usecase

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-job-hunter/internal/config"
	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// defaultRejectKeywords are phrases that disqualify a posting regardless of
// user preferences: clearance and citizenship requirements, sponsorship
// refusals, and staffing-agency tells.
var defaultRejectKeywords = []string{
	"security clearance",
	"us citizen only",
	"us citizens only",
	"must be us citizen",
	"no sponsorship",
	"not able to sponsor",
	"unable to sponsor",
	"without visa sponsorship",
	"cannot sponsor",
	"will not sponsor",
	"c2c position",
	"corp to corp",
	"staffing agency",
	"w2 through our vendor",
	"contract to hire",
}

// PreFilter rejects postings by blacklist and keyword before any paid LLM
// call. Stateless once constructed.
type PreFilter struct {
	blacklisted map[string]bool
	keywords    []string
}

// NewPreFilter builds a filter from preferences plus extra blacklisted
// companies (e.g. from the store). User keywords are unioned with the
// defaults.
func NewPreFilter(prefs config.Preferences, extraBlacklist []string) *PreFilter {
	blacklisted := make(map[string]bool, len(prefs.BlacklistCompanies)+len(extraBlacklist))
	for _, c := range prefs.BlacklistCompanies {
		blacklisted[strings.ToLower(strings.TrimSpace(c))] = true
	}
	for _, c := range extraBlacklist {
		blacklisted[strings.ToLower(strings.TrimSpace(c))] = true
	}
	seen := make(map[string]bool, len(defaultRejectKeywords)+len(prefs.RejectKeywords))
	keywords := make([]string, 0, len(defaultRejectKeywords)+len(prefs.RejectKeywords))
	for _, k := range append(append([]string{}, prefs.RejectKeywords...), defaultRejectKeywords...) {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keywords = append(keywords, k)
	}
	return &PreFilter{blacklisted: blacklisted, keywords: keywords}
}

// ShouldReject reports whether a job is disqualified and why.
func (f *PreFilter) ShouldReject(job domain.Job) (bool, string) {
	if f.blacklisted[strings.ToLower(strings.TrimSpace(job.Company))] {
		return true, fmt.Sprintf("Blacklisted company: %s", job.Company)
	}
	desc := strings.ToLower(job.Description)
	for _, k := range f.keywords {
		if strings.Contains(desc, k) {
			return true, fmt.Sprintf("Reject keyword found: '%s'", k)
		}
	}
	return false, ""
}
