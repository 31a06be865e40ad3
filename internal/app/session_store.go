package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SessionStore persists the last backend-issued context id per backend, so a
// research session survives client restarts the same way the browser client
// survived reloads. The backend remains the source of truth; this is only
// the identifier the client echoes on bootstrap.
//
// Layout:
//
//	<root>/session/<backendID>.json
//	<root>/history/<backendID>.json
type SessionStore struct {
	Root string
}

type storedSession struct {
	ContextID string    `json:"context_id"`
	BaseURL   string    `json:"base_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

type promptHistory struct {
	Entries   []string  `json:"entries"`
	UpdatedAt time.Time `json:"updated_at"`
}

const maxHistoryEntries = 200

func DefaultStoreRoot() string {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "lawclerk", "storage")
	}
	if base, err := os.UserHomeDir(); err == nil && base != "" {
		return filepath.Join(base, ".local", "share", "lawclerk", "storage")
	}
	return filepath.Join(os.TempDir(), "lawclerk", "storage")
}

func NewSessionStore(root string) *SessionStore {
	if strings.TrimSpace(root) == "" {
		root = DefaultStoreRoot()
	}
	return &SessionStore{Root: root}
}

// backendID keys storage by backend so switching servers never replays a
// foreign context id.
func backendID(baseURL string) string {
	sum := sha256.Sum256([]byte(strings.TrimRight(baseURL, "/")))
	return hex.EncodeToString(sum[:])[:16]
}

func (s *SessionStore) sessionPath(baseURL string) string {
	return filepath.Join(s.Root, "session", backendID(baseURL)+".json")
}

func (s *SessionStore) historyPath(baseURL string) string {
	return filepath.Join(s.Root, "history", backendID(baseURL)+".json")
}

func (s *SessionStore) SaveContextID(baseURL, contextID string) error {
	contextID = strings.TrimSpace(contextID)
	if contextID == "" {
		return errors.New("missing contextID")
	}
	if err := os.MkdirAll(filepath.Dir(s.sessionPath(baseURL)), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(storedSession{
		ContextID: contextID,
		BaseURL:   baseURL,
		UpdatedAt: time.Now(),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.sessionPath(baseURL), b, 0o644)
}

// LoadContextID returns the saved context id for a backend, or empty when
// none has been stored yet.
func (s *SessionStore) LoadContextID(baseURL string) (string, error) {
	b, err := os.ReadFile(s.sessionPath(baseURL))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	var sess storedSession
	if err := json.Unmarshal(b, &sess); err != nil {
		return "", err
	}
	return strings.TrimSpace(sess.ContextID), nil
}

func (s *SessionStore) ClearContextID(baseURL string) error {
	err := os.Remove(s.sessionPath(baseURL))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *SessionStore) SavePromptHistory(baseURL string, entries []string) error {
	if err := os.MkdirAll(filepath.Dir(s.historyPath(baseURL)), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(promptHistory{
		Entries:   normalizeHistory(entries, maxHistoryEntries),
		UpdatedAt: time.Now(),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.historyPath(baseURL), b, 0o644)
}

func (s *SessionStore) LoadPromptHistory(baseURL string) ([]string, error) {
	b, err := os.ReadFile(s.historyPath(baseURL))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	var payload promptHistory
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, err
	}
	return normalizeHistory(payload.Entries, maxHistoryEntries), nil
}

func normalizeHistory(entries []string, max int) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1] == entry {
			continue
		}
		out = append(out, entry)
	}
	if max > 0 && len(out) > max {
		out = out[len(out)-max:]
	}
	return out
}
