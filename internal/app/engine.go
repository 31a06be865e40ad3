package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Engine owns the dialogue state machine, the backend-issued context id, and
// the clarification attempt counter. It is the single writer of that state;
// everything else reads through Snapshot.
type Engine struct {
	backend Backend
	store   *SessionStore
	log     *zap.Logger
	baseURL string
	timeout time.Duration

	mu           sync.Mutex
	state        State
	chatInFlight bool

	contextID string
	attempts  int

	analysis  *AnalysisResult
	cases     []CaseResult
	questions []string
	document  string
	summary   string
	query     string
}

// State is the dialogue position. Clarifying and ResultsReady both re-enter
// AwaitingResponse on the next submission; there is no terminal state.
type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
	StateClarifying
	StateResultsReady
	StateErrorReported
)

func (s State) String() string {
	switch s {
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateClarifying:
		return "clarifying"
	case StateResultsReady:
		return "results_ready"
	case StateErrorReported:
		return "error_reported"
	default:
		return "idle"
	}
}

// Local validation failures, surfaced before any network call.
var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrNoSession    = errors.New("no research session yet; send a query or upload a document first")
	ErrBusy         = errors.New("a chat request is already in flight")
)

func NewEngine(backend Backend, store *SessionStore, baseURL string, timeout time.Duration, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Engine{
		backend: backend,
		store:   store,
		log:     log,
		baseURL: baseURL,
		timeout: timeout,
		state:   StateIdle,
	}
}

// Snapshot is a read-only copy of session-scoped state for the renderers.
type Snapshot struct {
	State      State
	ContextID  string
	Attempts   int
	Clarifying bool
	Questions  []string
	Analysis   *AnalysisResult
	Cases      []CaseResult
	Document   string
	Summary    string
	Query      string
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		State:      e.state,
		ContextID:  e.contextID,
		Attempts:   e.attempts,
		Clarifying: e.attempts > 0,
		Questions:  append([]string(nil), e.questions...),
		Analysis:   e.analysis,
		Cases:      append([]CaseResult(nil), e.cases...),
		Document:   e.document,
		Summary:    e.summary,
		Query:      e.query,
	}
}

// Bootstrap fetches the persisted session and context. It never fails the
// caller: any error is logged and the engine starts empty.
func (e *Engine) Bootstrap(ctx context.Context) {
	saved := ""
	if e.store != nil {
		if id, err := e.store.LoadContextID(e.baseURL); err == nil {
			saved = id
		} else {
			e.log.Warn("could not read saved session", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	resp, err := e.backend.FetchContext(ctx, saved)
	if err != nil {
		e.log.Warn("context bootstrap failed", zap.Error(err))
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.adoptContextIDLocked(resp.ContextID)
	if resp.Context.Analysis != nil {
		e.analysis = resp.Context.Analysis
	}
	if len(resp.Context.Cases) > 0 {
		e.cases = resp.Context.Cases
	}
	if resp.Context.Document != "" {
		e.document = resp.Context.Document
	}
	e.log.Info("session bootstrapped",
		zap.String("context_id", e.contextID),
		zap.Bool("had_analysis", resp.Context.Analysis != nil),
		zap.Int("cases", len(resp.Context.Cases)))
}

// OutcomeKind tags a chat outcome; exactly the backend's status
// discriminator, with empty results split out so stale data is never shown.
type OutcomeKind int

const (
	OutcomeClarifying OutcomeKind = iota
	OutcomeResults
	OutcomeNoResults
	OutcomeError
)

type ChatOutcome struct {
	Kind      OutcomeKind
	Questions []string
	Attempts  int
	Analysis  *AnalysisResult
	Cases     []CaseResult
	Summary   string
	Query     string
	Message   string
}

// SubmitMessage sends the full message text with the current context id and
// attempt counter; the backend decides whether it is a fresh query or an
// answer to outstanding clarification questions. At most one chat request is
// in flight at a time.
func (e *Engine) SubmitMessage(ctx context.Context, text string) (*ChatOutcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	e.mu.Lock()
	if e.chatInFlight {
		e.mu.Unlock()
		return nil, ErrBusy
	}
	e.chatInFlight = true
	e.state = StateAwaitingResponse
	contextID := e.contextID
	attempts := e.attempts
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.chatInFlight = false
		e.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	resp, err := e.backend.Chat(ctx, text, attempts, contextID)
	if err != nil {
		e.mu.Lock()
		e.state = StateErrorReported
		e.mu.Unlock()
		e.log.Error("chat request failed", zap.Error(err))
		return nil, err
	}
	return e.applyChatResponse(resp), nil
}

func (e *Engine) applyChatResponse(resp *ChatResponse) *ChatOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch resp.Status {
	case StatusClarifying:
		// The server's counter is authoritative; it is never incremented
		// locally.
		e.attempts = resp.ClarifyAttempts
		e.questions = append([]string(nil), resp.Questions...)
		e.adoptContextIDLocked(resp.ContextID)
		if resp.Analysis != nil {
			e.analysis = resp.Analysis
		}
		e.state = StateClarifying
		e.log.Info("clarification requested",
			zap.Int("attempts", e.attempts),
			zap.Int("questions", len(e.questions)))
		return &ChatOutcome{
			Kind:      OutcomeClarifying,
			Questions: append([]string(nil), resp.Questions...),
			Attempts:  resp.ClarifyAttempts,
			Analysis:  resp.Analysis,
		}

	case StatusResults:
		e.attempts = 0
		e.questions = nil
		e.adoptContextIDLocked(resp.ContextID)
		if resp.Analysis != nil {
			e.analysis = resp.Analysis
		}
		e.summary = resp.Summary
		e.query = resp.Query
		e.state = StateResultsReady

		if len(resp.Cases) == 0 {
			// An empty result set replaces stale cases rather than
			// coexisting with them.
			e.cases = nil
			e.log.Info("search returned no cases")
			return &ChatOutcome{
				Kind:     OutcomeNoResults,
				Analysis: resp.Analysis,
				Summary:  resp.Summary,
				Query:    resp.Query,
			}
		}
		e.cases = append([]CaseResult(nil), resp.Cases...)
		e.log.Info("search returned cases", zap.Int("count", len(resp.Cases)))
		return &ChatOutcome{
			Kind:     OutcomeResults,
			Cases:    append([]CaseResult(nil), resp.Cases...),
			Analysis: resp.Analysis,
			Summary:  resp.Summary,
			Query:    resp.Query,
		}

	case StatusError:
		// Attempts and context id stay untouched so an in-progress
		// clarification is not silently reset.
		e.state = StateErrorReported
		e.log.Warn("backend reported chat error", zap.String("message", resp.Message))
		return &ChatOutcome{Kind: OutcomeError, Message: resp.Message}

	default:
		e.state = StateErrorReported
		e.log.Warn("unexpected chat status", zap.String("status", resp.Status))
		return &ChatOutcome{Kind: OutcomeError, Message: "unexpected response from backend"}
	}
}

// RequestAnalysis refreshes the extracted analysis only; cases and drafts
// are untouched.
func (e *Engine) RequestAnalysis(ctx context.Context) (*AnalysisResult, error) {
	e.mu.Lock()
	contextID := e.contextID
	e.mu.Unlock()
	if contextID == "" {
		return nil, ErrNoSession
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	resp, err := e.backend.Analyze(ctx, contextID)
	if err != nil {
		e.log.Error("analysis request failed", zap.Error(err))
		return nil, err
	}
	if resp.Analysis == nil {
		return nil, errors.New("analysis response missing analysis")
	}

	e.mu.Lock()
	e.analysis = resp.Analysis
	e.mu.Unlock()
	return resp.Analysis, nil
}

// RequestDraft fetches the draft text for a document type and retains it as
// the session's current document.
func (e *Engine) RequestDraft(ctx context.Context, docType string) (string, error) {
	e.mu.Lock()
	contextID := e.contextID
	e.mu.Unlock()
	if contextID == "" {
		return "", ErrNoSession
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	resp, err := e.backend.Draft(ctx, contextID, docType)
	if err != nil {
		e.log.Error("draft request failed", zap.Error(err))
		return "", err
	}
	if strings.TrimSpace(resp.Document) == "" {
		return "", errors.New("draft response missing document")
	}

	e.mu.Lock()
	e.document = resp.Document
	e.mu.Unlock()
	return resp.Document, nil
}

// RequestDraftDownload asks the backend's authoring service for the finished
// binary document.
func (e *Engine) RequestDraftDownload(ctx context.Context, docType string) (*Download, error) {
	e.mu.Lock()
	contextID := e.contextID
	e.mu.Unlock()
	if contextID == "" {
		return nil, ErrNoSession
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	dl, err := e.backend.DownloadDraft(ctx, contextID, docType)
	if err != nil {
		e.log.Error("draft download failed", zap.Error(err))
		return nil, err
	}
	return dl, nil
}

// UploadDocument sends a PDF for extraction and adopts the resulting
// session.
func (e *Engine) UploadDocument(ctx context.Context, path string) (*UploadResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	resp, err := e.backend.Upload(ctx, path)
	if err != nil {
		e.log.Error("upload failed", zap.Error(err))
		return nil, err
	}

	e.mu.Lock()
	e.adoptContextIDLocked(resp.ContextID)
	if resp.Analysis != nil {
		e.analysis = resp.Analysis
	}
	e.mu.Unlock()
	e.log.Info("document uploaded", zap.String("filename", resp.Filename))
	return resp, nil
}

// adoptContextIDLocked takes a backend-issued context id and persists it.
// The client never generates ids, only echoes them.
func (e *Engine) adoptContextIDLocked(id string) {
	id = strings.TrimSpace(id)
	if id == "" || id == e.contextID {
		return
	}
	e.contextID = id
	if e.store != nil {
		if err := e.store.SaveContextID(e.baseURL, id); err != nil {
			e.log.Warn("could not persist context id", zap.Error(err))
		}
	}
}
