package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Backend is the client-side view of the research agents. The HTTP client is
// the real implementation; the canned offline backend satisfies it too.
type Backend interface {
	FetchContext(ctx context.Context, contextID string) (*ContextResponse, error)
	Upload(ctx context.Context, path string) (*UploadResponse, error)
	Analyze(ctx context.Context, contextID string) (*AnalyzeResponse, error)
	Chat(ctx context.Context, message string, attempts int, contextID string) (*ChatResponse, error)
	Draft(ctx context.Context, contextID, docType string) (*DraftResponse, error)
	DownloadDraft(ctx context.Context, contextID, docType string) (*Download, error)
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) FetchContext(ctx context.Context, contextID string) (*ContextResponse, error) {
	endpoint := c.BaseURL + "/context"
	if contextID != "" {
		endpoint += "?context_id=" + url.QueryEscape(contextID)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var out ContextResponse
	if err := c.doJSON(request, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Upload(ctx context.Context, path string) (*UploadResponse, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("pdf", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/upload", &body)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())

	var out UploadResponse
	if err := c.doJSON(request, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, fmt.Errorf("upload failed: %s", out.Error)
	}
	return &out, nil
}

func (c *Client) Analyze(ctx context.Context, contextID string) (*AnalyzeResponse, error) {
	var out AnalyzeResponse
	if err := c.postJSON(ctx, "/analyze", map[string]string{"context_id": contextID}, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, fmt.Errorf("analysis failed: %s", out.Error)
	}
	return &out, nil
}

func (c *Client) Chat(ctx context.Context, message string, attempts int, contextID string) (*ChatResponse, error) {
	payload := struct {
		Message         string `json:"message"`
		ClarifyAttempts int    `json:"clarify_attempts"`
		ContextID       string `json:"context_id,omitempty"`
	}{Message: message, ClarifyAttempts: attempts, ContextID: contextID}

	var out ChatResponse
	if err := c.postJSON(ctx, "/chat", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Draft(ctx context.Context, contextID, docType string) (*DraftResponse, error) {
	payload := map[string]string{"context_id": contextID, "doc_type": docType}
	var out DraftResponse
	if err := c.postJSON(ctx, "/draft", payload, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, fmt.Errorf("draft failed: %s", out.Error)
	}
	return &out, nil
}

// DownloadDraft distinguishes success from failure by the declared content
// type: a JSON body is always an error payload, anything else is the
// document. A zero-byte document counts as a failure.
func (c *Client) DownloadDraft(ctx context.Context, contextID, docType string) (*Download, error) {
	payload, err := json.Marshal(map[string]string{"context_id": contextID, "doc_type": docType})
	if err != nil {
		return nil, err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/download-draft", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(request)
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if isJSON(resp.Header.Get("Content-Type")) {
		var errResp struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return nil, fmt.Errorf("download failed: unreadable error response: %w", err)
		}
		msg := errResp.Error
		if msg == "" {
			msg = errResp.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("download failed: %s", msg)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read document body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("download failed: server returned an empty file")
	}

	return &Download{
		Filename: downloadFilename(resp.Header.Get("Content-Disposition"), contextID, docType),
		Data:     data,
	}, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	return c.doJSON(request, out)
}

func (c *Client) doJSON(request *http.Request, out any) error {
	resp, err := c.HTTP.Do(request)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var errResp struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &errResp)
		if errResp.Error != "" {
			return fmt.Errorf("backend error: status %d: %s", resp.StatusCode, errResp.Error)
		}
		if errResp.Message != "" {
			return fmt.Errorf("backend error: status %d: %s", resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("backend error: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid response format: %w", err)
	}
	return nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json"
}

// downloadFilename takes the server's Content-Disposition name when present,
// otherwise legal_<doc_type>_<first 8 of context_id>.pdf.
func downloadFilename(disposition, contextID, docType string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := params["filename"]; name != "" {
				return filepath.Base(name)
			}
		}
	}
	short := contextID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("legal_%s_%s.pdf", docType, short)
}
