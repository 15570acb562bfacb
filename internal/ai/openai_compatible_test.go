package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ailawyer/internal/apperr"
)

func newTestClient(url string, timeout time.Duration) *OpenAICompatibleClient {
	return NewOpenAICompatibleClient(Config{BaseURL: url + "/", APIKey: "k", Model: "m", EmbeddingModel: "e", Timeout: timeout})
}

func TestStreamCompleteRelaysDeltasInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"Статья ", "81 ", "ТК"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", part)
		}
		fmt.Fprint(w, "data: not-json\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	var got []string
	full, err := newTestClient(srv.URL, time.Second).StreamComplete(context.Background(), []ChatMessage{{Role: "user", Content: "q"}}, func(s string) error {
		got = append(got, s)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Статья ", "81 ", "ТК"}, got)
	assert.Equal(t, "Статья 81 ТК", full)
}

func TestStreamCompleteStopsOnCallbackError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n\n")
	}))
	defer srv.Close()

	stop := errors.New("client gone")
	_, err := newTestClient(srv.URL, time.Second).StreamComplete(context.Background(), nil, func(string) error { return stop })
	require.ErrorIs(t, err, stop)
}

func TestServerErrorIsModelUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Second).Complete(context.Background(), nil)
	require.ErrorIs(t, err, apperr.ErrModelUnavailable)
}

func TestUnreachableIsModelUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url, time.Second).Embed(context.Background(), "x")
	require.ErrorIs(t, err, apperr.ErrModelUnavailable)
}

func TestDeadlineIsModelTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newTestClient(srv.URL, 5*time.Second).Complete(ctx, nil)
	require.ErrorIs(t, err, apperr.ErrModelTimeout)
}

func TestCompleteParsesFirstChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ответ"}}]}`)
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL, time.Second).Complete(context.Background(), []ChatMessage{{Role: "user", Content: "q"}})
	require.NoError(t, err)
	assert.Equal(t, "ответ", out)
}

func TestEmbedBatchRestoresInputOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		fmt.Fprint(w, `{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}]}`)
	}))
	defer srv.Close()

	vecs, err := newTestClient(srv.URL, time.Second).EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
}

func TestEmbedBatchRejectsBlankInput(t *testing.T) {
	_, err := newTestClient("http://unused", time.Second).EmbedBatch(context.Background(), []string{"a", strings.Repeat(" ", 3)})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestCompleteIsBoundedByClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := newTestClient(srv.URL, 50*time.Millisecond).Complete(context.Background(), nil)
	require.ErrorIs(t, err, apperr.ErrModelTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestStreamBodyOutlivesClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for i := 0; i < 5; i++ {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":\"%d\"}}]}\n\n", i)
			flusher.Flush()
			time.Sleep(40 * time.Millisecond)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	full, err := newTestClient(srv.URL, 60*time.Millisecond).StreamComplete(context.Background(), nil, func(string) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, "01234", full)
}
