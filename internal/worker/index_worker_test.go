package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"ailawyer/internal/model"
)

type recordingIndexer struct {
	jobs []model.IndexJob
	err  error
}

func (r *recordingIndexer) Index(_ context.Context, job model.IndexJob) (int, error) {
	r.jobs = append(r.jobs, job)
	return len(job.Text), r.err
}

func TestHandleAcksIndexedJob(t *testing.T) {
	ix := &recordingIndexer{}
	w := NewIndexWorker(nil, ix, "legal.document.index", nil)

	ok := w.handle(context.Background(), []byte(`{"source_name":"ТК.txt","text":"Статья 1"}`))
	assert.True(t, ok)
	assert.Equal(t, []model.IndexJob{{SourceName: "ТК.txt", Text: "Статья 1"}}, ix.jobs)
}

func TestHandleRejectsBadDeliveries(t *testing.T) {
	ix := &recordingIndexer{}
	w := NewIndexWorker(nil, ix, "q", nil)

	assert.False(t, w.handle(context.Background(), []byte("not json")))
	assert.False(t, w.handle(context.Background(), []byte(`{"source_name":"  ","text":"x"}`)))
	assert.Empty(t, ix.jobs)
}

func TestHandleNacksFailedIndexing(t *testing.T) {
	ix := &recordingIndexer{err: errors.New("embedding service down")}
	w := NewIndexWorker(nil, ix, "q", nil)

	assert.False(t, w.handle(context.Background(), []byte(`{"source_name":"a.txt","text":"x"}`)))
	assert.Len(t, ix.jobs, 1)
}
