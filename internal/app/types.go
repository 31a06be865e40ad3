package app

// Wire types for the research backend. Optional fields mean "not yet known",
// never an error; display fallbacks live next to the types so every consumer
// degrades the same way.

type Party struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Details string `json:"details,omitempty"`
}

func (p Party) DisplayRole() string {
	if p.Role == "" {
		return "Unknown"
	}
	return p.Role
}

type PenalCode struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	Relevance   string `json:"relevance,omitempty"`
}

type AnalysisResult struct {
	Facts          []string    `json:"facts,omitempty"`
	Parties        []Party     `json:"parties,omitempty"`
	Jurisdictions  []string    `json:"jurisdictions,omitempty"`
	LegalIssues    []string    `json:"legal_issues,omitempty"`
	CausesOfAction []string    `json:"causes_of_action,omitempty"`
	PenalCodes     []PenalCode `json:"penal_codes,omitempty"`
}

// Empty reports whether no section has been extracted yet.
func (a AnalysisResult) Empty() bool {
	return len(a.Facts) == 0 &&
		len(a.Parties) == 0 &&
		len(a.Jurisdictions) == 0 &&
		len(a.LegalIssues) == 0 &&
		len(a.CausesOfAction) == 0 &&
		len(a.PenalCodes) == 0
}

type CaseResult struct {
	Title           string `json:"title"`
	Citation        string `json:"citation,omitempty"`
	RelevanceScore  int    `json:"relevance_score"`
	RelevanceReason string `json:"relevance_reason,omitempty"`
	Snippet         string `json:"snippet,omitempty"`
	PDFLink         string `json:"pdf_link,omitempty"`
}

func (c CaseResult) DisplayTitle() string {
	if c.Title == "" {
		return "Untitled"
	}
	return c.Title
}

func (c CaseResult) DisplayCitation() string {
	if c.Citation == "" {
		return "No citation"
	}
	return c.Citation
}

// RelevanceTier buckets the backend's 0-100 confidence score.
type RelevanceTier int

const (
	TierLow RelevanceTier = iota
	TierMedium
	TierHigh
)

func (t RelevanceTier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	default:
		return "low"
	}
}

// Tier classifies the case: >=70 high, 40-69 medium, below 40 low. A missing
// score decodes as 0 and lands in low.
func (c CaseResult) Tier() RelevanceTier {
	switch {
	case c.RelevanceScore >= 70:
		return TierHigh
	case c.RelevanceScore >= 40:
		return TierMedium
	default:
		return TierLow
	}
}

// Response envelopes, one per endpoint.

type ContextPayload struct {
	Analysis *AnalysisResult `json:"analysis,omitempty"`
	Cases    []CaseResult    `json:"cases,omitempty"`
	Document string          `json:"document,omitempty"`
}

type ContextResponse struct {
	ContextID string         `json:"context_id"`
	Context   ContextPayload `json:"context"`
}

type UploadResponse struct {
	Filename  string          `json:"filename"`
	Text      string          `json:"text"`
	ContextID string          `json:"context_id"`
	Analysis  *AnalysisResult `json:"analysis,omitempty"`
	Error     string          `json:"error,omitempty"`
}

type AnalyzeResponse struct {
	Analysis *AnalysisResult `json:"analysis,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Chat statuses, the discriminator for ChatResponse.
const (
	StatusClarifying = "clarifying"
	StatusResults    = "results"
	StatusError      = "error"
)

type ChatResponse struct {
	Status          string          `json:"status"`
	Questions       []string        `json:"questions,omitempty"`
	ClarifyAttempts int             `json:"clarify_attempts,omitempty"`
	ContextID       string          `json:"context_id,omitempty"`
	Analysis        *AnalysisResult `json:"analysis,omitempty"`
	Cases           []CaseResult    `json:"cases,omitempty"`
	Query           string          `json:"query,omitempty"`
	Summary         string          `json:"summary,omitempty"`
	Message         string          `json:"message,omitempty"`
}

type DraftResponse struct {
	Document string `json:"document,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Download is a successful binary draft export.
type Download struct {
	Filename string
	Data     []byte
}
