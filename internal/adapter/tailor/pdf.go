package tailor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/fairyhunter13/ai-job-hunter/internal/config"
	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// renderPDF writes a one-page resume tailored to the job.
func renderPDF(path string, resume config.ResumeProfile, job domain.Job, sel selection, bullets map[string][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("op=pdf.mkdir: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 16, 18)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 9, resume.Personal.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	contact := strings.Join(nonEmpty(
		resume.Personal.Email,
		resume.Personal.Phone,
		resume.Personal.Location,
		resume.Personal.LinkedIn,
	), "  |  ")
	pdf.CellFormat(0, 5, contact, "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// Tailored summary
	section(pdf, "Summary")
	pdf.SetFont("Helvetica", "", 10)
	summary := sel.Summary
	if summary == "" {
		summary = resume.Summary
	}
	pdf.MultiCell(0, 5, summary, "", "L", false)
	pdf.Ln(2)

	// Selected achievements
	if len(sel.SelectedAchievements) > 0 {
		section(pdf, "Selected Achievements")
		pdf.SetFont("Helvetica", "", 10)
		for _, name := range sel.SelectedAchievements {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.MultiCell(0, 5, name, "", "L", false)
			pdf.SetFont("Helvetica", "", 10)
			for _, b := range bullets[name] {
				pdf.MultiCell(0, 5, "  - "+b, "", "L", false)
			}
		}
		pdf.Ln(2)
	}

	// Experience
	if len(resume.Experience) > 0 {
		section(pdf, "Experience")
		for _, exp := range resume.Experience {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.MultiCell(0, 5, fmt.Sprintf("%s - %s (%s)", exp.Title, exp.Company, exp.Years), "", "L", false)
			pdf.SetFont("Helvetica", "", 10)
			for _, b := range exp.Bullets {
				pdf.MultiCell(0, 5, "  - "+b, "", "L", false)
			}
		}
		pdf.Ln(2)
	}

	// Skills, highlighted first
	section(pdf, "Skills")
	pdf.SetFont("Helvetica", "", 10)
	if len(sel.HighlightedSkills) > 0 {
		pdf.MultiCell(0, 5, strings.Join(sel.HighlightedSkills, ", "), "", "L", false)
	}
	for category, skills := range resume.Skills {
		pdf.MultiCell(0, 5, fmt.Sprintf("%s: %s", category, strings.Join(skills, ", ")), "", "L", false)
	}

	// Education
	if len(resume.Education) > 0 {
		pdf.Ln(2)
		section(pdf, "Education")
		pdf.SetFont("Helvetica", "", 10)
		for _, edu := range resume.Education {
			pdf.MultiCell(0, 5, fmt.Sprintf("%s - %s (%s)", edu.Degree, edu.School, edu.Years), "", "L", false)
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("op=pdf.write path=%s: %w", path, err)
	}
	return nil
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, title, "B", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func nonEmpty(ss ...string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
