package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/bububa/uxcrew/components"
	"github.com/bububa/uxcrew/components/generator"
	"github.com/bububa/uxcrew/pipeline"
	"github.com/bububa/uxcrew/stories"
)

const mockupDoc = `<!DOCTYPE html><html><head><title>Login</title></head><body><button>Find the submit button</button></body></html>`

func fixed(answers ...string) generator.Generator {
	var i int
	return generator.Func(func(ctx context.Context, req *generator.Request, resp *components.LLMResponse) (string, error) {
		v := answers[i]
		i++
		if v == "" {
			return "", errors.New("quota exceeded")
		}
		return v, nil
	})
}

func newTestApp(t *testing.T, client generator.Generator) *app {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p, err := pipeline.New(client, pipeline.WithLogger(logger))
	require.NoError(t, err)
	return &app{
		logger:    logger,
		client:    client,
		pipeline:  p,
		extractor: stories.NewExtractor(nil, ""),
	}
}

func files(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestWriteOutputs(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		answers []string
		failed  bool
		want    []string
	}{
		{
			name: "complete",
			answers: []string{
				"- Header\n- Form",
				"Low contrast.",
				"Raise the contrast.",
				"1. As a visitor, I want to find the submit button, so that I can log in.\n   Priority: High",
				"```html\n" + mockupDoc + "\n```",
			},
			want: []string{
				"critique.md", "description.md", "mockup.annotated.html", "mockup.html",
				"report.md", "result.json", "stories.md", "stories.xlsx", "suggestions.md",
			},
		},
		{
			name: "extraction failure",
			answers: []string{
				"- Header", "Low contrast.", "Raise the contrast.", "No stories.", "Sorry, no mockup today.",
			},
			failed: true,
			want: []string{
				"critique.md", "description.md", "mockup.raw.txt",
				"report.md", "result.json", "stories.md", "suggestions.md",
			},
		},
		{
			name:    "provider failure",
			answers: []string{"- Header", ""},
			failed:  true,
			want:    []string{"description.md", "report.md", "result.json"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t, fixed(tt.answers...))
			result, err := a.pipeline.Run(ctx, &pipeline.Request{})
			if tt.failed {
				require.Error(t, err)
				assert.Equal(t, pipeline.Failed, result.State)
			} else {
				require.NoError(t, err)
			}
			dir := filepath.Join(t.TempDir(), "out")
			require.NoError(t, writeOutputs(ctx, a, dir, result))
			assert.ElementsMatch(t, tt.want, files(t, dir))

			md, err := os.ReadFile(filepath.Join(dir, "report.md"))
			require.NoError(t, err)
			assert.Contains(t, string(md), result.RunID)
		})
	}
}

func TestWriteOutputsWithoutStoriesSkipsExtraction(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Inc()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	cfg := openai.DefaultConfig("k")
	cfg.BaseURL = srv.URL

	ctx := context.Background()
	a := newTestApp(t, fixed("- Header", ""))
	a.extractor = stories.NewExtractor(openai.NewClientWithConfig(cfg), "gpt-4o-mini")
	result, err := a.pipeline.Run(ctx, &pipeline.Request{})
	require.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, writeOutputs(ctx, a, dir, result))
	assert.Zero(t, calls.Load())
	assert.NoFileExists(t, filepath.Join(dir, "stories.xlsx"))
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		_, err := newLogger(level)
		assert.NoError(t, err, level)
	}
	_, err := newLogger("loud")
	assert.Error(t, err)
}

func TestRunUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"deploy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "deploy"`)
}

func TestAnalyzeNeedsOneImage(t *testing.T) {
	err := analyze(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one image")
}
