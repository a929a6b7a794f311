package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidRecord   = errors.New("invalid record")
	ErrNotFound        = errors.New("not found")
	ErrDuplicate       = errors.New("duplicate")
	ErrIntegrity       = errors.New("integrity violation")
	ErrRateLimited     = errors.New("rate limited")
	ErrAPI             = errors.New("api error")
	ErrInvalidResponse = errors.New("invalid response")
	ErrTransport       = errors.New("transport error")
	ErrConfig          = errors.New("config error")
)

// JobStatus enumerates the workflow states of a posting.
// Transitions form a DAG:
//
//	new -> filtered | rejected
//	filtered -> matched | rejected
//	matched -> approved | skipped
//	approved -> applied | failed
type JobStatus string

const (
	JobNew      JobStatus = "new"
	JobFiltered JobStatus = "filtered"
	JobMatched  JobStatus = "matched"
	JobRejected JobStatus = "rejected"
	JobApproved JobStatus = "approved"
	JobSkipped  JobStatus = "skipped"
	JobApplied  JobStatus = "applied"
	JobFailed   JobStatus = "failed"
)

// DecisionType records how a matched job should be acted on.
type DecisionType string

const (
	DecisionAuto   DecisionType = "auto"
	DecisionManual DecisionType = "manual"
)

// Job is a single posting.
// Invariants: URLHash globally unique; (Platform, ExternalID) unique when
// ExternalID present; SourcePriority in {1,2,3}; MatchScore in [0,1].
type Job struct {
	ID              int64
	Platform        string
	ExternalID      string
	URL             string
	URLHash         string
	FuzzyHash       string
	Title           string
	Company         string
	Location        string
	Description     string
	DescriptionMD   string
	SalaryMin       *int64
	SalaryMax       *int64
	SalaryCurrency  string
	SalaryText      string
	RemoteType      string
	VisaSponsorship bool
	EasyApply       bool
	MatchScore      *float64
	MatchReasoning  string
	KeyRequirements []string
	RedFlags        []string
	Status          JobStatus
	DecisionType    *DecisionType
	Source          string
	SourcePriority  int
	IsProcessed     bool
	ScrapedAt       time.Time
	FilteredAt      *time.Time
	DecidedAt       *time.Time
	AppliedAt       *time.Time
}

// ApplicationStatus enumerates application submission states.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationSubmitted ApplicationStatus = "submitted"
	ApplicationFailed    ApplicationStatus = "failed"
)

// Application is the single submission record for a job (unique per job).
type Application struct {
	ID           int64
	JobID        int64
	ResumePath   string
	Status       ApplicationStatus
	ErrorMessage string
	Attempts     int
	SubmittedAt  *time.Time
	CreatedAt    time.Time
}

// Resume is a generated artifact; multiple per job allowed, most recent wins.
type Resume struct {
	ID             int64
	JobID          int64
	PDFPath        string
	Highlights     []string
	TailoringNotes string
	GeneratedAt    time.Time
}

// RunStatus enumerates pipeline run states.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is one pipeline invocation with its counters.
type Run struct {
	ID                  int64
	StartedAt           time.Time
	CompletedAt         *time.Time
	JobsScraped         int
	JobsFiltered        int
	JobsMatched         int
	JobsAutoApplied     int
	JobsPendingDecision int
	JobsFailed          int
	Status              RunStatus
}

// BlacklistEntry is a unique (Type, Value) pair, e.g. company:Revature.
type BlacklistEntry struct {
	ID        int64
	Type      string
	Value     string
	Reason    string
	CreatedAt time.Time
}

// LogEntry is an append-only structured audit record.
type LogEntry struct {
	ID        int64
	Level     string
	Component string
	Message   string
	Details   string
	CreatedAt time.Time
}

// SourceRecord is the shape scrapers emit; the Importer normalizes it.
type SourceRecord struct {
	Title           string `json:"title"`
	Company         string `json:"company"`
	URL             string `json:"url"`
	Description     string `json:"description"`
	Salary          string `json:"salary,omitempty"`
	PostedDate      string `json:"posted_date,omitempty"`
	Location        string `json:"location,omitempty"`
	RemoteType      string `json:"remote_type,omitempty"`
	VisaSponsorship bool   `json:"visa_sponsorship,omitempty"`
	EasyApply       bool   `json:"easy_apply,omitempty"`
	ExternalID      string `json:"external_id,omitempty"`
}

// DuplicateCheck is the result of Store.CheckDuplicate.
type DuplicateCheck struct {
	IsDuplicate bool
	Reason      string // "already_applied" | "already_scraped" | ""
	ExistingID  int64
}

// DailyStats aggregates per-day counters for the report surface.
type DailyStats struct {
	Date            string
	JobsScraped     int
	JobsMatched     int
	JobsAutoApply   int
	JobsPending     int
	JobsRejected    int
	ApplicationsSub int
}

// Repositories (ports)

type JobStore interface {
	InsertJob(ctx Context, j Job) (int64, error)
	InsertJobIfNew(ctx Context, j Job) (int64, bool, error)
	GetJob(ctx Context, id int64) (Job, error)
	GetJobByURLHash(ctx Context, hash string) (Job, error)
	GetJobByFuzzyHash(ctx Context, hash string) (Job, error)
	JobsByStatus(ctx Context, status JobStatus, limit, offset int) ([]Job, error)
	UnprocessedJobs(ctx Context, limit int) ([]Job, error)
	MatchedJobs(ctx Context, minScore, maxScore float64, status JobStatus, limit int) ([]Job, error)
	PendingDecisions(ctx Context, decision DecisionType, limit int) ([]Job, error)
	CompanyJobs(ctx Context, company string, excludeID int64, limit int) ([]Job, error)
	UpdateJobStatus(ctx Context, id int64, status JobStatus, decision *DecisionType) error
	UpdateJobScoring(ctx Context, id int64, score float64, reasoning string, requirements, redFlags []string) error
	ReplaceJobContent(ctx Context, id int64, j Job) error
	UpdateJobDescription(ctx Context, id int64, description string) error
	MarkProcessed(ctx Context, id int64) error
	CheckDuplicate(ctx Context, platform, externalID, url string) (DuplicateCheck, error)
}

type ApplicationStore interface {
	CreateApplication(ctx Context, a Application) (int64, error)
	GetApplicationByJob(ctx Context, jobID int64) (Application, error)
	UpdateApplication(ctx Context, a Application) error
	ApplicationsSince(ctx Context, since time.Time) (int, error)
}

type ResumeStore interface {
	CreateResume(ctx Context, r Resume) (int64, error)
	LatestResumeForJob(ctx Context, jobID int64) (Resume, error)
}

type RunStore interface {
	StartRun(ctx Context) (int64, error)
	UpdateRunCounters(ctx Context, r Run) error
	CompleteRun(ctx Context, id int64, status RunStatus) error
	GetRun(ctx Context, id int64) (Run, error)
}

type BlacklistStore interface {
	UpsertBlacklist(ctx Context, e BlacklistEntry) error
	BlacklistByType(ctx Context, typ string) ([]BlacklistEntry, error)
}

type LogStore interface {
	AppendLog(ctx Context, e LogEntry) error
}

// Store is the full persistence port. Transaction runs fn atomically against
// a Store view bound to the transaction; any error rolls back.
type Store interface {
	JobStore
	ApplicationStore
	ResumeStore
	RunStore
	BlacklistStore
	LogStore
	DailyStats(ctx Context, date string) (DailyStats, error)
	Transaction(ctx Context, fn func(Store) error) error
}

// ChatMessage is one turn of a provider conversation.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatResponse is a single provider completion with usage accounting.
type ChatResponse struct {
	Content      string
	Model        string
	InputTokens  int64
	OutputTokens int64
	CostUSD      float64
}

// ProviderStats are per-instance accumulated totals.
type ProviderStats struct {
	TotalCostUSD      float64
	TotalInputTokens  int64
	TotalOutputTokens int64
	Requests          int64
}

// ProviderClient (port)

type ProviderClient interface {
	// Chat performs a single request/response completion. Implementations
	// retry rate-limit and transport failures with exponential backoff.
	Chat(ctx Context, messages []ChatMessage, temperature float64, maxTokens int) (ChatResponse, error)
	// CostFor is the pure pricing function for this client's model.
	CostFor(inputTokens, outputTokens int64) float64
	Stats() ProviderStats
	ResetStats()
	Model() string
}

// Tailor (port): produces a per-job PDF resume.

type TailorResult struct {
	JobID                int64
	ResumeID             int64
	PDFPath              string
	Summary              string
	SelectedAchievements []string
	HighlightedSkills    []string
	TailoringNotes       string
	CostUSD              float64
}

type Tailor interface {
	TailorForJob(ctx Context, jobID int64, template string) (TailorResult, error)
}

// Applier (port): submits an application on a platform.

type ApplyResult struct {
	Success        bool
	JobID          int64
	Company        string
	Title          string
	Platform       string
	Method         string
	Error          string
	ScreenshotPath string
}

type Applier interface {
	ApplyToJob(ctx Context, jobID int64, resumePath string) (ApplyResult, error)
}

// Notifier (port)

type Notifier interface {
	Notify(ctx Context, message, parseMode string) error
}

// Scraper (port): push model; records enter the Importer. Implemented by the
// external browser agent via instruction files; declared here so in-process
// scrapers can plug in later.

type Scraper interface {
	Scrape(ctx Context, platform string, limit int, keywords []string, remoteOnly bool) ([]SourceRecord, error)
}

// Context is an alias to allow decoupling from std context in domain.
// Adapters and usecases pass context.Context through.
type Context = context.Context
