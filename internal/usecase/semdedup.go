package usecase

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// titleSubstitutions canonicalize common spelling variants before comparison.
var titleSubstitutions = [][2]string{
	{"artificial intelligence", "ai"},
	{"machine learning", "ml"},
	{"quality assurance", "qa"},
	{"full stack", "fullstack"},
	{"full-stack", "fullstack"},
	{"backend", "back-end"},
	{"frontend", "front-end"},
}

// seniorityWords carry no identity; removed before comparison.
var seniorityWords = map[string]bool{
	"senior": true, "junior": true, "lead": true,
	"principal": true, "staff": true,
	"the": true, "a": true, "an": true,
}

// NormalizeTitle lowercases, substitutes variants, drops seniority words, and
// collapses whitespace.
func NormalizeTitle(title string) string {
	t := strings.ToLower(title)
	for _, sub := range titleSubstitutions {
		t = strings.ReplaceAll(t, sub[0], sub[1])
	}
	words := strings.Fields(t)
	kept := words[:0]
	for _, w := range words {
		if !seniorityWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// SimilarTitles holds when normalized titles are equal, one contains the
// other, or word overlap reaches 0.8 of the smaller set.
func SimilarTitles(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	wordsA := map[string]bool{}
	for _, w := range strings.Fields(a) {
		wordsA[w] = true
	}
	wordsB := map[string]bool{}
	for _, w := range strings.Fields(b) {
		wordsB[w] = true
	}
	overlap := 0
	for w := range wordsA {
		if wordsB[w] {
			overlap++
		}
	}
	minLen := len(wordsA)
	if len(wordsB) < minLen {
		minLen = len(wordsB)
	}
	if minLen == 0 {
		return false
	}
	return float64(overlap) >= 0.8*float64(minLen)
}

// SemanticDedup detects near-duplicate titles within a company without an
// LLM call.
type SemanticDedup struct {
	Store domain.Store
}

// NewSemanticDedup constructs the dedup over the store.
func NewSemanticDedup(store domain.Store) *SemanticDedup {
	return &SemanticDedup{Store: store}
}

// IsDuplicate compares a job against up to 10 existing non-rejected jobs from
// the same company and returns the first match's id.
func (d *SemanticDedup) IsDuplicate(ctx domain.Context, job domain.Job) (bool, int64, error) {
	others, err := d.Store.CompanyJobs(ctx, job.Company, job.ID, 10)
	if err != nil {
		return false, 0, fmt.Errorf("op=semdedup.company_jobs: %w", err)
	}
	norm := NormalizeTitle(job.Title)
	for _, other := range others {
		// Two unprocessed near-duplicates in the same scoring window must
		// not reject each other; the lower id always survives.
		if !other.IsProcessed && other.ID > job.ID {
			continue
		}
		if SimilarTitles(norm, NormalizeTitle(other.Title)) {
			return true, other.ID, nil
		}
	}
	return false, 0, nil
}
