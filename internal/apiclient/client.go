// Package apiclient talks to a running server's HTTP API. It backs the
// lawctl command line tool.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ailawyer/internal/app"
	"ailawyer/internal/model"
	"ailawyer/internal/stream"
)

type Client struct {
	baseURL   string
	http      *http.Client
	adminUser string
	adminPass string
	token     string
}

type Option func(*Client)

func WithAdmin(username, password string) Option {
	return func(c *Client) { c.adminUser, c.adminPass = username, password }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default client. Streaming requests need one
// without an overall timeout.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx answer decoded from the response envelope.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (code %d): %s", e.Status, e.Code, e.Message)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(req *http.Request, admin bool, out interface{}) error {
	if admin {
		req.SetBasicAuth(c.adminUser, c.adminPass)
	} else if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s response (status %d): %w", req.URL.Path, resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func (c *Client) Upload(ctx context.Context, path string) (*model.LegalDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/admin/documents/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var doc model.LegalDocument
	if err := c.do(req, true, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) Stats(ctx context.Context) (*app.AdminStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/admin/stats", nil)
	if err != nil {
		return nil, err
	}
	var stats app.AdminStats
	if err := c.do(req, true, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) Remove(ctx context.Context, source string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/admin/documents/"+url.PathEscape(source), nil)
	if err != nil {
		return 0, err
	}
	var out struct {
		DeletedChunks int `json:"deleted_chunks"`
	}
	if err := c.do(req, true, &out); err != nil {
		return 0, err
	}
	return out.DeletedChunks, nil
}

type AskInput struct {
	Question  string
	Mode      string
	SessionID uint
}

// Ask streams a chat answer, calling fn for every event in order.
func (c *Client) Ask(ctx context.Context, in AskInput, fn func(stream.Event) error) error {
	payload, err := json.Marshal(map[string]interface{}{
		"message":    in.Question,
		"mode":       in.Mode,
		"session_id": in.SessionID,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/lawyer/chat", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var env envelope
		_ = json.NewDecoder(resp.Body).Decode(&env)
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	return stream.Decode(resp.Body, fn)
}
