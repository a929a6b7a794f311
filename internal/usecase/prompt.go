package usecase

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-job-hunter/internal/config"
	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

const scoringSystemPrompt = `You are a job-matching assistant. You evaluate how well a job posting fits a candidate's background and preferences. Respond with a single JSON object and no other text.`

// FormatAchievements renders the achievements profile into a stable
// prompt-ready block.
func FormatAchievements(achievements []config.Achievement) string {
	var sb strings.Builder
	for _, a := range achievements {
		sb.WriteString("- ")
		sb.WriteString(a.Name)
		if len(a.Keywords) > 0 {
			sb.WriteString(" (")
			sb.WriteString(strings.Join(a.Keywords, ", "))
			sb.WriteString(")")
		}
		sb.WriteString("\n")
		for _, b := range a.Bullets {
			sb.WriteString("  * ")
			sb.WriteString(b)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// FormatPreferences renders preferences into a stable prompt-ready block.
func FormatPreferences(prefs config.Preferences) string {
	var sb strings.Builder
	if len(prefs.TargetPositions) > 0 {
		fmt.Fprintf(&sb, "Target positions: %s\n", strings.Join(prefs.TargetPositions, ", "))
	}
	if len(prefs.Locations) > 0 {
		fmt.Fprintf(&sb, "Locations: %s\n", strings.Join(prefs.Locations, ", "))
	}
	if prefs.RemoteOnly {
		sb.WriteString("Remote only: yes\n")
	}
	if prefs.SalaryMinimum > 0 {
		fmt.Fprintf(&sb, "Minimum salary: %d %s\n", prefs.SalaryMinimum, prefs.SalaryCurrency)
	}
	if prefs.VisaSponsorship {
		sb.WriteString("Visa sponsorship required: yes\n")
	}
	if len(prefs.PreferKeywords) > 0 {
		fmt.Fprintf(&sb, "Preferred keywords: %s\n", strings.Join(prefs.PreferKeywords, ", "))
	}
	return sb.String()
}

// BuildScoringPrompt assembles the user prompt for one job. The model must
// return score (0-100), reasoning, red_flags, key_matches, and tier.
func BuildScoringPrompt(achievementsBlock, preferencesBlock string, job domain.Job) string {
	var sb strings.Builder
	sb.WriteString("Evaluate this job posting against the candidate below.\n\n")
	sb.WriteString("## Candidate achievements\n")
	sb.WriteString(achievementsBlock)
	sb.WriteString("\n## Candidate preferences\n")
	sb.WriteString(preferencesBlock)
	sb.WriteString("\n## Job\n")
	fmt.Fprintf(&sb, "Title: %s\nCompany: %s\nLocation: %s\n", job.Title, job.Company, job.Location)
	if job.SalaryText != "" {
		fmt.Fprintf(&sb, "Salary: %s\n", job.SalaryText)
	}
	fmt.Fprintf(&sb, "Source: %s\n", job.Source)
	sb.WriteString("Description:\n")
	sb.WriteString(job.Description)
	sb.WriteString("\n\n## Scoring rubric\n")
	sb.WriteString(`Score 0-100:
- Skills match with the candidate's achievements (up to 35 points)
- Experience level fit (up to 20 points)
- Technology stack overlap (up to 15 points)
- Remote availability matching preferences (up to 10 points)
- Salary vs the candidate's minimum (up to 10 points)
- Visa sponsorship availability (up to 10 points)

Deduct for red flags:
- On-site requirement conflicting with remote-only preference
- Explicit refusal to sponsor a visa the candidate needs
- Salary below the candidate's minimum
- Staffing agency or pass-through posting
- Core skill mismatch
`)
	sb.WriteString("\n## Output\n")
	sb.WriteString(`Return ONLY a JSON object:
{"score": <0-100 integer>, "reasoning": "<2-3 sentences>", "red_flags": ["..."], "key_matches": ["..."], "tier": "high|medium|low"}`)
	return sb.String()
}
