// Package tailor produces per-job PDF resumes by selecting relevant
// achievements with an LLM and rendering a one-page document.
package tailor

import (
	"fmt"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/fairyhunter13/ai-job-hunter/internal/adapter/ai"
	"github.com/fairyhunter13/ai-job-hunter/internal/config"
	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
	"github.com/fairyhunter13/ai-job-hunter/pkg/textx"
)

const tailorSystemPrompt = `You select the most relevant achievements from a candidate's inventory for one specific job posting. Respond with a single JSON object and no other text.`

// Service implements domain.Tailor.
type Service struct {
	Store        domain.Store
	Client       domain.ProviderClient
	Resume       config.ResumeProfile
	Achievements []config.Achievement
	OutputDir    string
}

// NewService constructs a tailor service writing PDFs under outputDir.
func NewService(store domain.Store, client domain.ProviderClient, resume config.ResumeProfile, achievements []config.Achievement, outputDir string) *Service {
	return &Service{
		Store:        store,
		Client:       client,
		Resume:       resume,
		Achievements: achievements,
		OutputDir:    outputDir,
	}
}

// selection is the validated shape of the tailoring response.
type selection struct {
	Summary              string   `json:"summary"`
	SelectedAchievements []string `json:"selected_achievements"`
	HighlightedSkills    []string `json:"highlighted_skills"`
	TailoringNotes       string   `json:"tailoring_notes"`
}

// TailorForJob selects achievements for the job, renders the PDF, and records
// the Resume row. The artifact lands at
// <output_dir>/resume_job_<id>_<sanitized_company>.pdf.
func (s *Service) TailorForJob(ctx domain.Context, jobID int64, template string) (domain.TailorResult, error) {
	job, err := s.Store.GetJob(ctx, jobID)
	if err != nil {
		return domain.TailorResult{}, fmt.Errorf("op=tailor.get_job: %w", err)
	}

	sel, cost, err := s.selectAchievements(ctx, job)
	if err != nil {
		return domain.TailorResult{}, err
	}

	pdfPath := filepath.Join(s.OutputDir,
		fmt.Sprintf("resume_job_%d_%s.pdf", job.ID, textx.SanitizeFilename(job.Company)))
	if err := renderPDF(pdfPath, s.Resume, job, sel, s.pickBullets(sel.SelectedAchievements)); err != nil {
		return domain.TailorResult{}, fmt.Errorf("op=tailor.render: %w", err)
	}

	resumeID, err := s.Store.CreateResume(ctx, domain.Resume{
		JobID:          job.ID,
		PDFPath:        pdfPath,
		Highlights:     sel.SelectedAchievements,
		TailoringNotes: sel.TailoringNotes,
	})
	if err != nil {
		return domain.TailorResult{}, fmt.Errorf("op=tailor.record: %w", err)
	}
	slog.Info("resume tailored",
		slog.Int64("job_id", job.ID),
		slog.String("path", pdfPath),
		slog.Int("achievements", len(sel.SelectedAchievements)))

	return domain.TailorResult{
		JobID:                job.ID,
		ResumeID:             resumeID,
		PDFPath:              pdfPath,
		Summary:              sel.Summary,
		SelectedAchievements: sel.SelectedAchievements,
		HighlightedSkills:    sel.HighlightedSkills,
		TailoringNotes:       sel.TailoringNotes,
		CostUSD:              cost,
	}, nil
}

func (s *Service) selectAchievements(ctx domain.Context, job domain.Job) (selection, float64, error) {
	var inventory strings.Builder
	for _, a := range s.Achievements {
		fmt.Fprintf(&inventory, "- %s", a.Name)
		if len(a.Keywords) > 0 {
			fmt.Fprintf(&inventory, " (keywords: %s)", strings.Join(a.Keywords, ", "))
		}
		inventory.WriteString("\n")
	}
	prompt := fmt.Sprintf(`Pick 3-5 achievements (by exact name) from the inventory that best fit the job, write a 2-sentence summary positioning the candidate for it, and list skills to highlight.

## Achievement inventory
%s
## Job
Title: %s
Company: %s
Description:
%s

Return ONLY a JSON object:
{"summary": "...", "selected_achievements": ["..."], "highlighted_skills": ["..."], "tailoring_notes": "..."}`,
		inventory.String(), job.Title, job.Company, textx.Truncate(job.Description, 4000))

	resp, err := s.Client.Chat(ctx, []domain.ChatMessage{
		{Role: "system", Content: tailorSystemPrompt},
		{Role: "user", Content: prompt},
	}, 0.4, 1024)
	if err != nil {
		return selection{}, 0, fmt.Errorf("op=tailor.select: %w", err)
	}
	var sel selection
	if err := ai.ParseStructuredResponse(resp.Content, &sel); err != nil {
		return selection{}, resp.CostUSD, fmt.Errorf("op=tailor.select: %w", err)
	}
	if len(sel.SelectedAchievements) == 0 {
		return selection{}, resp.CostUSD, fmt.Errorf("op=tailor.select: %w: no achievements selected", domain.ErrInvalidResponse)
	}
	return sel, resp.CostUSD, nil
}

// pickBullets maps selected achievement names back to their bullets.
func (s *Service) pickBullets(names []string) map[string][]string {
	out := map[string][]string{}
	for _, name := range names {
		for _, a := range s.Achievements {
			if strings.EqualFold(a.Name, name) {
				out[a.Name] = a.Bullets
				break
			}
		}
	}
	return out
}
