package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/bububa/uxcrew/components"
	"github.com/bububa/uxcrew/components/generator"
	"github.com/bububa/uxcrew/pipeline"
	"github.com/bububa/uxcrew/stories"
)

func TestRegistryEvictsOldestFinished(t *testing.T) {
	p, err := pipeline.New(sequence(answers), pipeline.WithLogger(discard()))
	require.NoError(t, err)
	r := NewRegistry(2)

	var ids []string
	for i := 0; i < 3; i++ {
		e, err := r.Start(func() *pipeline.Run { return p.Start(context.Background(), &pipeline.Request{}) })
		require.NoError(t, err)
		_, err = e.Run.Wait()
		require.NoError(t, err)
		ids = append(ids, e.Run.ID())
	}
	assert.Equal(t, 2, r.Len())
	_, ok := r.Get(ids[0])
	assert.False(t, ok)
	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].Run.ID())
	assert.Equal(t, ids[1], list[1].Run.ID())
}

func TestRegistryFull(t *testing.T) {
	gate := make(chan struct{})
	client := generator.Func(func(ctx context.Context, req *generator.Request, resp *components.LLMResponse) (string, error) {
		<-gate
		return answers[4], nil
	})
	p, err := pipeline.New(client, pipeline.WithLogger(discard()))
	require.NoError(t, err)
	r := NewRegistry(1)

	first, err := r.Start(func() *pipeline.Run { return p.Start(context.Background(), &pipeline.Request{}) })
	require.NoError(t, err)
	_, err = r.Start(func() *pipeline.Run { return p.Start(context.Background(), &pipeline.Request{}) })
	assert.ErrorIs(t, err, ErrRegistryFull)

	close(gate)
	select {
	case <-first.Run.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
	}
	_, err = r.Start(func() *pipeline.Run { return p.Start(context.Background(), &pipeline.Request{}) })
	assert.NoError(t, err)
}

func TestEntryStories(t *testing.T) {
	p, err := pipeline.New(sequence(answers), pipeline.WithLogger(discard()))
	require.NoError(t, err)
	r := NewRegistry(1)
	e, err := r.Start(func() *pipeline.Run { return p.Start(context.Background(), &pipeline.Request{}) })
	require.NoError(t, err)
	_, err = e.Run.Wait()
	require.NoError(t, err)

	list, err := e.Stories(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, list.Stories, 1)
	assert.Equal(t, "find the submit button", list.Stories[0].Goal)
}

func TestEntryStoriesKeepsFailure(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Inc()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()
	cfg := openai.DefaultConfig("k")
	cfg.BaseURL = srv.URL
	extractor := stories.NewExtractor(openai.NewClientWithConfig(cfg), "gpt-4o-mini")

	noStories := append([]string(nil), answers...)
	noStories[3] = "Nothing worth a story."
	p, err := pipeline.New(sequence(noStories), pipeline.WithLogger(discard()))
	require.NoError(t, err)
	e, err := NewRegistry(1).Start(func() *pipeline.Run { return p.Start(context.Background(), &pipeline.Request{}) })
	require.NoError(t, err)
	_, err = e.Run.Wait()
	require.NoError(t, err)

	_, err = e.Stories(context.Background(), extractor)
	require.Error(t, err)
	first := calls.Load()
	assert.Positive(t, first)

	list, again := e.Stories(context.Background(), extractor)
	assert.Equal(t, err, again)
	assert.Empty(t, list.Stories)
	assert.Equal(t, first, calls.Load())
}
