package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeBackend lets each test script the collaborator per call.
type fakeBackend struct {
	fetchContext  func(contextID string) (*ContextResponse, error)
	chat          func(message string, attempts int, contextID string) (*ChatResponse, error)
	analyze       func(contextID string) (*AnalyzeResponse, error)
	draft         func(contextID, docType string) (*DraftResponse, error)
	downloadDraft func(contextID, docType string) (*Download, error)
	upload        func(path string) (*UploadResponse, error)
}

func (f *fakeBackend) FetchContext(_ context.Context, contextID string) (*ContextResponse, error) {
	if f.fetchContext == nil {
		return &ContextResponse{}, nil
	}
	return f.fetchContext(contextID)
}

func (f *fakeBackend) Upload(_ context.Context, path string) (*UploadResponse, error) {
	return f.upload(path)
}

func (f *fakeBackend) Analyze(_ context.Context, contextID string) (*AnalyzeResponse, error) {
	return f.analyze(contextID)
}

func (f *fakeBackend) Chat(_ context.Context, message string, attempts int, contextID string) (*ChatResponse, error) {
	return f.chat(message, attempts, contextID)
}

func (f *fakeBackend) Draft(_ context.Context, contextID, docType string) (*DraftResponse, error) {
	return f.draft(contextID, docType)
}

func (f *fakeBackend) DownloadDraft(_ context.Context, contextID, docType string) (*Download, error) {
	return f.downloadDraft(contextID, docType)
}

func newTestEngine(t *testing.T, backend Backend) *Engine {
	t.Helper()
	store := NewSessionStore(t.TempDir())
	return NewEngine(backend, store, "http://backend.test", time.Second, nil)
}

func TestSubmitMessage_EmptyIsLocalValidation(t *testing.T) {
	called := false
	backend := &fakeBackend{chat: func(string, int, string) (*ChatResponse, error) {
		called = true
		return nil, nil
	}}
	e := newTestEngine(t, backend)

	_, err := e.SubmitMessage(context.Background(), "   \n\t ")
	require.ErrorIs(t, err, ErrEmptyMessage)
	require.False(t, called, "no network call for an empty message")
	require.Equal(t, StateIdle, e.Snapshot().State)
}

func TestSubmitMessage_ClarifyingAdoptsServerState(t *testing.T) {
	var gotAttempts int
	var gotContextID string
	backend := &fakeBackend{chat: func(_ string, attempts int, contextID string) (*ChatResponse, error) {
		gotAttempts = attempts
		gotContextID = contextID
		return &ChatResponse{
			Status:          StatusClarifying,
			Questions:       []string{"Which state?", "When did tenancy end?"},
			ClarifyAttempts: 1,
			ContextID:       "abc123",
		}, nil
	}}
	e := newTestEngine(t, backend)

	out, err := e.SubmitMessage(context.Background(), "my landlord kept my deposit")
	require.NoError(t, err)
	require.Zero(t, gotAttempts)
	require.Empty(t, gotContextID)

	require.Equal(t, OutcomeClarifying, out.Kind)
	require.Equal(t, []string{"Which state?", "When did tenancy end?"}, out.Questions)
	require.Equal(t, 1, out.Attempts)

	snap := e.Snapshot()
	require.Equal(t, StateClarifying, snap.State)
	require.True(t, snap.Clarifying)
	require.Equal(t, 1, snap.Attempts)
	require.Equal(t, "abc123", snap.ContextID)
}

func TestSubmitMessage_NextRequestEchoesSessionAndAttempts(t *testing.T) {
	calls := 0
	var secondAttempts int
	var secondContextID string
	backend := &fakeBackend{chat: func(_ string, attempts int, contextID string) (*ChatResponse, error) {
		calls++
		if calls == 1 {
			return &ChatResponse{Status: StatusClarifying, ClarifyAttempts: 1, ContextID: "abc123"}, nil
		}
		secondAttempts = attempts
		secondContextID = contextID
		return &ChatResponse{Status: StatusResults, ContextID: "abc123"}, nil
	}}
	e := newTestEngine(t, backend)

	_, err := e.SubmitMessage(context.Background(), "first")
	require.NoError(t, err)
	_, err = e.SubmitMessage(context.Background(), "California, last March")
	require.NoError(t, err)

	require.Equal(t, 1, secondAttempts)
	require.Equal(t, "abc123", secondContextID)
}

func TestSubmitMessage_ResultsResetAttempts(t *testing.T) {
	calls := 0
	backend := &fakeBackend{chat: func(string, int, string) (*ChatResponse, error) {
		calls++
		if calls == 1 {
			return &ChatResponse{Status: StatusClarifying, ClarifyAttempts: 1, ContextID: "abc123"}, nil
		}
		return &ChatResponse{
			Status:    StatusResults,
			ContextID: "abc123",
			Cases: []CaseResult{{
				Title:          "Doe v. Roe",
				Citation:       "123 F.3d 456",
				RelevanceScore: 85,
				PDFLink:        "http://x",
			}},
		}, nil
	}}
	e := newTestEngine(t, backend)

	_, err := e.SubmitMessage(context.Background(), "query")
	require.NoError(t, err)
	out, err := e.SubmitMessage(context.Background(), "answers")
	require.NoError(t, err)

	require.Equal(t, OutcomeResults, out.Kind)
	require.Len(t, out.Cases, 1)
	require.Equal(t, TierHigh, out.Cases[0].Tier())

	snap := e.Snapshot()
	require.Zero(t, snap.Attempts)
	require.False(t, snap.Clarifying)
	require.Equal(t, StateResultsReady, snap.State)
	require.Len(t, snap.Cases, 1)
}

func TestSubmitMessage_EmptyResultsReplaceStaleCases(t *testing.T) {
	calls := 0
	backend := &fakeBackend{chat: func(string, int, string) (*ChatResponse, error) {
		calls++
		if calls == 1 {
			return &ChatResponse{
				Status:    StatusResults,
				ContextID: "abc123",
				Cases:     []CaseResult{{Title: "Old v. Stale", RelevanceScore: 50}},
			}, nil
		}
		return &ChatResponse{Status: StatusResults, ContextID: "abc123"}, nil
	}}
	e := newTestEngine(t, backend)

	_, err := e.SubmitMessage(context.Background(), "first query")
	require.NoError(t, err)
	out, err := e.SubmitMessage(context.Background(), "second query")
	require.NoError(t, err)

	require.Equal(t, OutcomeNoResults, out.Kind)
	require.Empty(t, e.Snapshot().Cases, "stale cases must not survive an empty result")
}

func TestSubmitMessage_BackendErrorLeavesStateUntouched(t *testing.T) {
	calls := 0
	backend := &fakeBackend{chat: func(string, int, string) (*ChatResponse, error) {
		calls++
		if calls == 1 {
			return &ChatResponse{Status: StatusClarifying, ClarifyAttempts: 2, ContextID: "abc123"}, nil
		}
		return &ChatResponse{Status: StatusError, Message: "retrieval agents unavailable"}, nil
	}}
	e := newTestEngine(t, backend)

	_, err := e.SubmitMessage(context.Background(), "query")
	require.NoError(t, err)
	out, err := e.SubmitMessage(context.Background(), "more detail")
	require.NoError(t, err)

	require.Equal(t, OutcomeError, out.Kind)
	require.Equal(t, "retrieval agents unavailable", out.Message)

	snap := e.Snapshot()
	require.Equal(t, 2, snap.Attempts, "errors must not reset an in-progress clarification")
	require.Equal(t, "abc123", snap.ContextID)
	require.Equal(t, StateErrorReported, snap.State)
}

func TestSubmitMessage_TransportErrorReported(t *testing.T) {
	backend := &fakeBackend{chat: func(string, int, string) (*ChatResponse, error) {
		return nil, errors.New("connection refused")
	}}
	e := newTestEngine(t, backend)

	_, err := e.SubmitMessage(context.Background(), "query")
	require.Error(t, err)
	require.Equal(t, StateErrorReported, e.Snapshot().State)

	// The failure is terminal for that request only; a resubmission goes out.
	backend.chat = func(string, int, string) (*ChatResponse, error) {
		return &ChatResponse{Status: StatusResults}, nil
	}
	_, err = e.SubmitMessage(context.Background(), "query again")
	require.NoError(t, err)
}

func TestSubmitMessage_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	backend := &fakeBackend{chat: func(string, int, string) (*ChatResponse, error) {
		close(entered)
		<-release
		return &ChatResponse{Status: StatusResults}, nil
	}}
	e := newTestEngine(t, backend)

	done := make(chan error, 1)
	go func() {
		_, err := e.SubmitMessage(context.Background(), "slow request")
		done <- err
	}()
	<-entered

	_, err := e.SubmitMessage(context.Background(), "overlapping request")
	require.ErrorIs(t, err, ErrBusy)
	require.Equal(t, StateAwaitingResponse, e.Snapshot().State)

	close(release)
	require.NoError(t, <-done)
}

func TestRequestAnalysis_RequiresSession(t *testing.T) {
	e := newTestEngine(t, &fakeBackend{})
	_, err := e.RequestAnalysis(context.Background())
	require.ErrorIs(t, err, ErrNoSession)
}

func TestRequestAnalysis_ReplacesAnalysisOnly(t *testing.T) {
	analysis := &AnalysisResult{Facts: []string{"new fact"}}
	backend := &fakeBackend{
		chat: func(string, int, string) (*ChatResponse, error) {
			return &ChatResponse{
				Status:    StatusResults,
				ContextID: "abc123",
				Cases:     []CaseResult{{Title: "Kept v. Intact"}},
			}, nil
		},
		analyze: func(contextID string) (*AnalyzeResponse, error) {
			require.Equal(t, "abc123", contextID)
			return &AnalyzeResponse{Analysis: analysis}, nil
		},
	}
	e := newTestEngine(t, backend)
	_, err := e.SubmitMessage(context.Background(), "seed session")
	require.NoError(t, err)

	got, err := e.RequestAnalysis(context.Background())
	require.NoError(t, err)
	require.Equal(t, analysis, got)

	snap := e.Snapshot()
	require.Equal(t, analysis, snap.Analysis)
	require.Len(t, snap.Cases, 1, "analysis refresh must not touch cases")
}

func TestRequestDraft_RequiresSession(t *testing.T) {
	e := newTestEngine(t, &fakeBackend{})
	_, err := e.RequestDraft(context.Background(), "memo")
	require.ErrorIs(t, err, ErrNoSession)

	_, err = e.RequestDraftDownload(context.Background(), "memo")
	require.ErrorIs(t, err, ErrNoSession)
}

func TestRequestDraft_MissingDocumentIsError(t *testing.T) {
	backend := &fakeBackend{
		chat: func(string, int, string) (*ChatResponse, error) {
			return &ChatResponse{Status: StatusResults, ContextID: "abc123"}, nil
		},
		draft: func(string, string) (*DraftResponse, error) {
			return &DraftResponse{}, nil
		},
	}
	e := newTestEngine(t, backend)
	_, err := e.SubmitMessage(context.Background(), "seed session")
	require.NoError(t, err)

	_, err = e.RequestDraft(context.Background(), "memo")
	require.Error(t, err)
}

func TestBootstrap_SeedsState(t *testing.T) {
	backend := &fakeBackend{fetchContext: func(contextID string) (*ContextResponse, error) {
		return &ContextResponse{
			ContextID: "ctx-1",
			Context: ContextPayload{
				Analysis: &AnalysisResult{Facts: []string{"seeded"}},
				Cases:    []CaseResult{{Title: "Seeded v. Case"}},
				Document: "**Memo**\nBody.",
			},
		}, nil
	}}
	e := newTestEngine(t, backend)
	e.Bootstrap(context.Background())

	snap := e.Snapshot()
	require.Equal(t, "ctx-1", snap.ContextID)
	require.NotNil(t, snap.Analysis)
	require.Len(t, snap.Cases, 1)
	require.Equal(t, "**Memo**\nBody.", snap.Document)
}

func TestBootstrap_NeverFails(t *testing.T) {
	backend := &fakeBackend{fetchContext: func(string) (*ContextResponse, error) {
		return nil, errors.New("backend down")
	}}
	e := newTestEngine(t, backend)
	e.Bootstrap(context.Background())

	snap := e.Snapshot()
	require.Empty(t, snap.ContextID)
	require.Equal(t, StateIdle, snap.State)
}

func TestBootstrap_EchoesPersistedContextID(t *testing.T) {
	root := t.TempDir()
	store := NewSessionStore(root)
	require.NoError(t, store.SaveContextID("http://backend.test", "saved-ctx"))

	var echoed string
	backend := &fakeBackend{fetchContext: func(contextID string) (*ContextResponse, error) {
		echoed = contextID
		return &ContextResponse{ContextID: "saved-ctx"}, nil
	}}
	e := NewEngine(backend, store, "http://backend.test", time.Second, nil)
	e.Bootstrap(context.Background())

	require.Equal(t, "saved-ctx", echoed)
	require.Equal(t, "saved-ctx", e.Snapshot().ContextID)
}
