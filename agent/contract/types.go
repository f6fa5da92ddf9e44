package contract

import "time"

type AgentName string

const (
	AgentScraper  AgentName = "scraper"
	AgentAnalysis AgentName = "profile_analysis"
	AgentJobFit   AgentName = "job_fit"
	AgentRewrite  AgentName = "content_rewrite"
	AgentMemory   AgentName = "memory"
	AgentChat     AgentName = "chat"
)

// Profile is a point-in-time snapshot of a scraped professional profile.
// A newer scrape supersedes an older snapshot; a Profile is never mutated.
type Profile struct {
	ID         string            `json:"id" validate:"required"`
	URL        string            `json:"url" validate:"required,url"`
	Name       string            `json:"name"`
	Headline   string            `json:"headline"`
	About      string            `json:"about"`
	Experience []ExperienceEntry `json:"experience" validate:"dive"`
	Skills     []string          `json:"skills"`
	Education  []EducationEntry  `json:"education" validate:"dive"`
	ScrapedAt  time.Time         `json:"scraped_at" validate:"required"`
}

type ExperienceEntry struct {
	Title     string `json:"title" validate:"required"`
	Company   string `json:"company"`
	DateRange string `json:"date_range"`
	Summary   string `json:"summary"`
}

type EducationEntry struct {
	School string `json:"school" validate:"required"`
	Degree string `json:"degree"`
	Years  string `json:"years"`
}

// AnalysisResult is the structured critique of one Profile snapshot.
type AnalysisResult struct {
	ID              string         `json:"id" validate:"required"`
	ProfileID       string         `json:"profile_id" validate:"required"`
	SectionScores   map[string]int `json:"section_scores" validate:"required,dive,gte=0,lte=10"`
	Strengths       []string       `json:"strengths"`
	Gaps            []string       `json:"gaps"`
	Recommendations []string       `json:"recommendations"`
	Summary         string         `json:"summary"`
	CreatedAt       time.Time      `json:"created_at" validate:"required"`
}

// JobFitScore ties one Profile snapshot to one target role.
type JobFitScore struct {
	ID            string    `json:"id" validate:"required"`
	ProfileID     string    `json:"profile_id" validate:"required"`
	TargetRole    string    `json:"target_role" validate:"required"`
	Score         int       `json:"score" validate:"gte=0,lte=100"`
	Rationale     string    `json:"rationale" validate:"required"`
	MatchedSkills []string  `json:"matched_skills"`
	MissingSkills []string  `json:"missing_skills"`
	CreatedAt     time.Time `json:"created_at" validate:"required"`
}

// RewriteResult holds a rewritten section; the originating Profile text is
// left untouched.
type RewriteResult struct {
	ID            string    `json:"id" validate:"required"`
	ProfileID     string    `json:"profile_id" validate:"required"`
	AnalysisID    string    `json:"analysis_id" validate:"required"`
	Section       string    `json:"section" validate:"required,oneof=headline about experience"`
	OriginalText  string    `json:"original_text"`
	RewrittenText string    `json:"rewritten_text" validate:"required"`
	CreatedAt     time.Time `json:"created_at" validate:"required"`
}

// TurnRecord is one user-message/response exchange, including which agents
// ran and, on failure, the failure kind.
type TurnRecord struct {
	Timestamp   time.Time   `json:"timestamp"`
	UserMessage string      `json:"user_message"`
	AgentTrace  []AgentName `json:"agent_trace"`
	Response    string      `json:"response"`
	FailureKind string      `json:"failure_kind,omitempty"`
}

// Fact is a single durable long-term memory entry for a user.
type Fact struct {
	UserID    string    `json:"user_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GenerateOptions mirrors the recognized option set of the external
// text-generation capability.
type GenerateOptions struct {
	MaxTokens     int
	Temperature   float64
	StopSequences []string
}

// RawProfile is the unvalidated field set returned by the scrape capability.
type RawProfile struct {
	Name       string
	Headline   string
	About      string
	Experience []ExperienceEntry
	Skills     []string
	Education  []EducationEntry
}

// TurnResult is what the session façade hands back to external callers.
type TurnResult struct {
	ResponseText string      `json:"response_text"`
	Payload      any         `json:"structured_payload,omitempty"`
	AgentTrace   []AgentName `json:"agent_trace"`
	ErrorCode    string      `json:"error,omitempty"`
}

// ProfileStatus reports whether a session holds a scraped profile.
type ProfileStatus struct {
	HasProfile    bool       `json:"has_profile"`
	LastScrapedAt *time.Time `json:"last_scraped_at,omitempty"`
}
