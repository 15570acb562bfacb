package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ailawyer/internal/stream"
)

func TestUploadSendsMultipartWithAdminAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "admin", user)
		assert.Equal(t, "pw", pass)
		assert.Equal(t, "/api/admin/documents/upload", r.URL.Path)

		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(f)
		assert.Equal(t, "ТК.txt", hdr.Filename)
		assert.Equal(t, "Статья 1", string(body))

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"code":0,"message":"ok","data":{"source_name":"ТК.txt","status":"indexed","chunk_count":1}}`)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "ТК.txt")
	require.NoError(t, os.WriteFile(path, []byte("Статья 1"), 0o644))

	doc, err := New(srv.URL, WithAdmin("admin", "pw")).Upload(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "indexed", doc.Status)
	assert.Equal(t, 1, doc.ChunkCount)
}

func TestErrorsDecodeEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/documents/%D0%A2%D0%9A.txt", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"code":40400,"message":"document \"ТК.txt\": not found"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Remove(context.Background(), "ТК.txt")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, 40400, apiErr.Code)
}

func TestAskDecodesStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/event-stream")
		enc := stream.NewEncoder(w)
		_ = enc.Encode(stream.ChunkEvent("Работник "))
		_ = enc.Encode(stream.ChunkEvent("вправе..."))
		_ = enc.Encode(stream.DoneEvent(stream.Done{SessionID: 11}))
	}))
	defer srv.Close()

	var text string
	var done stream.Event
	err := New(srv.URL, WithToken("tok")).Ask(context.Background(), AskInput{Question: "Права работника?"}, func(ev stream.Event) error {
		switch ev.Kind {
		case stream.KindChunk:
			text += ev.Chunk
		default:
			done = ev
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Работник вправе...", text)
	assert.Equal(t, uint(11), done.Done.SessionID)
}
