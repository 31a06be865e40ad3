package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// MockBackend is the canned offline collaborator used when no base URL is
// configured. First contact asks the stock clarifying questions; once the
// attempt counter is non-zero it returns the stock case set, so the whole
// clarification round-trip can be exercised without a server.
type MockBackend struct {
	contextID string
}

func NewMockBackend() *MockBackend {
	return &MockBackend{contextID: uuid.NewString()}
}

var mockQuestions = []string{
	"What jurisdiction is your case in?",
	"Briefly describe the legal issue.",
	"Are there any relevant facts you want to highlight?",
}

var mockCases = []CaseResult{
	{
		Title:           "Mock Case 1",
		Citation:        "123 U.S. 456",
		RelevanceScore:  85,
		RelevanceReason: "This case shares the same legal principle regarding contract interpretation.",
	},
	{
		Title:           "Mock Case 2",
		Citation:        "789 F.2d 101",
		RelevanceScore:  55,
		RelevanceReason: "Factual similarity regarding employment law.",
	},
}

const mockDraft = `**Memorandum**
This memorandum summarizes the issues raised in the uploaded matter and the
authorities located so far.

**Questions Presented**
1. Whether the agreement is enforceable as written.
2. Whether the termination violated the governing statute.

**Authorities**
- Mock Case 1, 123 U.S. 456
- Mock Case 2, 789 F.2d 101

Further analysis will follow once the outstanding facts are clarified.`

func (m *MockBackend) FetchContext(_ context.Context, contextID string) (*ContextResponse, error) {
	if contextID != "" {
		m.contextID = contextID
	}
	return &ContextResponse{ContextID: m.contextID}, nil
}

func (m *MockBackend) Upload(_ context.Context, path string) (*UploadResponse, error) {
	return &UploadResponse{
		Filename:  filepath.Base(path),
		Text:      "Mock extracted text from PDF",
		ContextID: m.contextID,
		Analysis: &AnalysisResult{
			Facts:         []string{"Tenant vacated the premises in March."},
			Jurisdictions: []string{"California"},
		},
	}, nil
}

func (m *MockBackend) Analyze(_ context.Context, _ string) (*AnalyzeResponse, error) {
	return &AnalyzeResponse{
		Analysis: &AnalysisResult{
			Facts:          []string{"Tenant vacated the premises in March.", "Deposit was withheld in full."},
			Parties:        []Party{{Name: "J. Doe", Role: "Plaintiff"}, {Name: "Acme Property LLC", Role: "Defendant"}},
			Jurisdictions:  []string{"California"},
			LegalIssues:    []string{"Security deposit retention"},
			CausesOfAction: []string{"Breach of Civ. Code §1950.5"},
		},
	}, nil
}

func (m *MockBackend) Chat(_ context.Context, _ string, attempts int, contextID string) (*ChatResponse, error) {
	if contextID != "" {
		m.contextID = contextID
	}
	if attempts == 0 {
		return &ChatResponse{
			Status:          StatusClarifying,
			Questions:       mockQuestions,
			ClarifyAttempts: 1,
			ContextID:       m.contextID,
		}, nil
	}
	return &ChatResponse{
		Status:    StatusResults,
		ContextID: m.contextID,
		Cases:     mockCases,
		Summary:   "Two candidate precedents located from the clarified query.",
	}, nil
}

func (m *MockBackend) Draft(_ context.Context, _ string, _ string) (*DraftResponse, error) {
	return &DraftResponse{Document: mockDraft}, nil
}

func (m *MockBackend) DownloadDraft(_ context.Context, contextID, docType string) (*Download, error) {
	short := contextID
	if len(short) > 8 {
		short = short[:8]
	}
	return &Download{
		Filename: fmt.Sprintf("legal_%s_%s.pdf", docType, short),
		Data:     []byte("%PDF-1.4 mock document"),
	}, nil
}
