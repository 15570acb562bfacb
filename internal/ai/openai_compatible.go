package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"ailawyer/internal/apperr"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	EmbeddingModel string
	Timeout        time.Duration
}

type OpenAICompatibleClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewOpenAICompatibleClient bounds connecting and waiting for response
// headers by cfg.Timeout. The client itself has no overall timeout: a
// streamed body lasts as long as the caller's context allows, and the
// unary calls apply cfg.Timeout per call.
func NewOpenAICompatibleClient(cfg Config) *OpenAICompatibleClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: cfg.Timeout, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSHandshakeTimeout = cfg.Timeout
	transport.ResponseHeaderTimeout = cfg.Timeout

	return &OpenAICompatibleClient{
		cfg:        cfg,
		httpClient: &http.Client{Transport: transport},
	}
}

func (c *OpenAICompatibleClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.post(ctx, "/chat/completions", map[string]interface{}{
		"model":    c.cfg.Model,
		"messages": messages,
		"stream":   false,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classify(ctx, fmt.Errorf("read llm response failed: %w", err))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse llm json failed: %v: %w", err, apperr.ErrModelUnavailable)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty llm choices: %w", apperr.ErrModelUnavailable)
	}
	return parsed.Choices[0].Message.Content, nil
}

// StreamComplete relays each content delta to onChunk in arrival order and
// returns the concatenated text. An onChunk error stops the stream and is
// returned unchanged.
func (c *OpenAICompatibleClient) StreamComplete(
	ctx context.Context,
	messages []ChatMessage,
	onChunk func(chunk string) error,
) (string, error) {
	resp, err := c.post(ctx, "/chat/completions", map[string]interface{}{
		"model":    c.cfg.Model,
		"messages": messages,
		"stream":   true,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	var full strings.Builder
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}

		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		text := chunk.Choices[0].Delta.Content

		full.WriteString(text)
		if err := onChunk(text); err != nil {
			return full.String(), err
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), classify(ctx, fmt.Errorf("scan llm stream failed: %w", err))
	}
	if err := ctx.Err(); err != nil {
		return full.String(), classify(ctx, err)
	}
	return full.String(), nil
}

func (c *OpenAICompatibleClient) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal llm request failed: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build llm request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("llm request failed: %w", err))
	}
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("llm response status %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(raw)), apperr.ErrModelUnavailable)
	}
	return resp, nil
}

// classify maps transport failures onto the model error kinds. Caller
// cancellation passes through untouched.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, apperr.ErrModelTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%v: %w", err, apperr.ErrModelTimeout)
	}
	return fmt.Errorf("%v: %w", err, apperr.ErrModelUnavailable)
}
