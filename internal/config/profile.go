package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// Profile configs are the candidate-authored YAML files under ConfigDir.
// The pipeline consumes these as typed structs; it never parses free-form
// documents itself.

// ResumeProfile is the candidate's base resume content.
type ResumeProfile struct {
	Personal struct {
		Name     string `yaml:"name" validate:"required"`
		Email    string `yaml:"email" validate:"required,email"`
		Phone    string `yaml:"phone"`
		Location string `yaml:"location"`
		LinkedIn string `yaml:"linkedin"`
		GitHub   string `yaml:"github"`
		Website  string `yaml:"website"`
	} `yaml:"personal"`
	Summary   string `yaml:"summary"`
	Education []struct {
		School string `yaml:"school"`
		Degree string `yaml:"degree"`
		Years  string `yaml:"years"`
	} `yaml:"education"`
	Experience []struct {
		Company string   `yaml:"company"`
		Title   string   `yaml:"title"`
		Years   string   `yaml:"years"`
		Bullets []string `yaml:"bullets"`
	} `yaml:"experience"`
	Projects []struct {
		Name    string   `yaml:"name"`
		Bullets []string `yaml:"bullets"`
	} `yaml:"projects"`
	Skills map[string][]string `yaml:"skills"`
}

// Preferences drive pre-filtering, scoring thresholds, and apply rate caps.
type Preferences struct {
	TargetPositions     []string `yaml:"target_positions"`
	Locations           []string `yaml:"locations"`
	RemoteOnly          bool     `yaml:"remote_only"`
	SalaryMinimum       int64    `yaml:"salary_minimum"`
	SalaryCurrency      string   `yaml:"salary_currency"`
	RejectKeywords      []string `yaml:"reject_keywords"`
	PreferKeywords      []string `yaml:"prefer_keywords"`
	BlacklistCompanies  []string `yaml:"blacklist_companies"`
	AutoApplyThreshold  float64  `yaml:"auto_apply_threshold" validate:"gte=0,lte=1"`
	NotifyThreshold     float64  `yaml:"notify_threshold" validate:"gte=0,lte=1"`
	MaxApplicationsDay  int      `yaml:"max_applications_per_day"`
	MaxApplicationsHour int      `yaml:"max_applications_per_hour"`
	ScrapeIntervalHours int      `yaml:"scrape_interval_hours"`
	Platforms           map[string]bool `yaml:"platforms"`
	VisaSponsorship     bool     `yaml:"visa_sponsorship_required"`
}

// Achievement is one reusable accomplishment the tailor selects from.
type Achievement struct {
	Name     string   `yaml:"name" validate:"required"`
	Category []string `yaml:"category"`
	Keywords []string `yaml:"keywords"`
	Bullets  []string `yaml:"bullets" validate:"required,min=1"`
}

// Credentials maps platform logins and service API keys.
type Credentials struct {
	Platforms map[string]struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"platforms"`
	Services map[string]struct {
		APIKey string `yaml:"api_key"`
		URL    string `yaml:"url"`
	} `yaml:"services"`
}

// ProviderSpec names the provider and model to use for one purpose.
type ProviderSpec struct {
	Provider string `yaml:"provider" validate:"required"`
	Model    string `yaml:"model" validate:"required"`
}

// LLMProviders maps purpose -> provider/model, e.g. filter and tailor.
type LLMProviders struct {
	Purposes map[string]ProviderSpec `yaml:"purposes" validate:"required,dive"`
	Default  ProviderSpec            `yaml:"default"`
}

// ProfileLoader loads and validates the YAML profile configs from a directory.
type ProfileLoader struct {
	Dir      string
	validate *validator.Validate
}

// NewProfileLoader constructs a loader rooted at dir.
func NewProfileLoader(dir string) *ProfileLoader {
	return &ProfileLoader{Dir: dir, validate: validator.New()}
}

func loadYAML[T any](l *ProfileLoader, name string, out *T) error {
	path := filepath.Join(l.Dir, name)
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("op=profile.load file=%s: %w: %v", name, domain.ErrConfig, err)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("op=profile.parse file=%s: %w: %v", name, domain.ErrConfig, err)
	}
	if err := l.validate.Struct(out); err != nil {
		return fmt.Errorf("op=profile.validate file=%s: %w: %v", name, domain.ErrConfig, err)
	}
	return nil
}

// Resume loads resume.yaml.
func (l *ProfileLoader) Resume() (ResumeProfile, error) {
	var r ResumeProfile
	err := loadYAML(l, "resume.yaml", &r)
	return r, err
}

// Preferences loads preferences.yaml.
func (l *ProfileLoader) Preferences() (Preferences, error) {
	var p Preferences
	err := loadYAML(l, "preferences.yaml", &p)
	return p, err
}

// Achievements loads achievements.yaml.
func (l *ProfileLoader) Achievements() ([]Achievement, error) {
	var doc struct {
		Achievements []Achievement `yaml:"achievements"`
	}
	if err := loadYAML(l, "achievements.yaml", &doc); err != nil {
		return nil, err
	}
	return doc.Achievements, nil
}

// Credentials loads credentials.yaml.
func (l *ProfileLoader) Credentials() (Credentials, error) {
	var c Credentials
	err := loadYAML(l, "credentials.yaml", &c)
	return c, err
}

// LLMProviders loads llm_providers.yaml.
func (l *ProfileLoader) LLMProviders() (LLMProviders, error) {
	var p LLMProviders
	err := loadYAML(l, "llm_providers.yaml", &p)
	return p, err
}
