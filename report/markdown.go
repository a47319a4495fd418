// Package report renders pipeline results as markdown and sanitized HTML
package report

import (
	"fmt"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/bububa/uxcrew/pipeline"
	"github.com/bububa/uxcrew/stories"
)

const Title = "UX Review"

// Markdown renders the full report of a run: summary, latency table, one section per stage,
// the prioritized stories and an outline of the mockup
func Markdown(result *pipeline.Result, list stories.List) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", Title)
	writeSummary(&b, result)
	if result.Len() > 0 {
		writeLatency(&b, result)
	}
	for _, res := range result.Stages() {
		fmt.Fprintf(&b, "## %s\n\n", sectionTitle(res))
		if res.Name == pipeline.StageMockup {
			if err := writeMockup(&b, res); err != nil {
				return "", err
			}
			continue
		}
		b.WriteString(strings.TrimSpace(res.Output))
		b.WriteString("\n\n")
		if res.Name == pipeline.StageStories && len(list.Stories) > 0 {
			writeStories(&b, list)
		}
	}
	return strings.TrimSpace(b.String()) + "\n", nil
}

func sectionTitle(res pipeline.StageResult) string {
	if res.Title != "" {
		return res.Title
	}
	return res.Name
}

func writeSummary(b *strings.Builder, result *pipeline.Result) {
	fmt.Fprintf(b, "- Run: `%s`\n", result.RunID)
	fmt.Fprintf(b, "- State: %s\n", result.State)
	if !result.StartedAt.IsZero() {
		fmt.Fprintf(b, "- Started: %s\n", result.StartedAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(b, "- Elapsed: %s\n", Duration(result.Elapsed))
	if usage := result.Usage(); usage.InputTokens > 0 || usage.OutputTokens > 0 {
		fmt.Fprintf(b, "- Tokens: %d input, %d output\n", usage.InputTokens, usage.OutputTokens)
	}
	if result.Err != nil {
		if stage := result.FailedStage(); stage != "" {
			fmt.Fprintf(b, "- Failed stage: %s\n", stage)
		}
		fmt.Fprintf(b, "- Error: %s\n", oneLine(result.Err.Error()))
	}
	b.WriteString("\n")
}

func writeLatency(b *strings.Builder, result *pipeline.Result) {
	b.WriteString("## Latency\n\n")
	b.WriteString("| Stage | Model | Elapsed | Prompt tokens | Input tokens | Output tokens |\n")
	b.WriteString("|---|---|---|---:|---:|---:|\n")
	for _, res := range result.Stages() {
		var in, out int64
		if res.Usage != nil {
			in, out = res.Usage.InputTokens, res.Usage.OutputTokens
		}
		fmt.Fprintf(b, "| %s | %s | %s | %d | %d | %d |\n", cell(sectionTitle(res)), cell(res.Model), Duration(res.Elapsed), res.PromptTokens, in, out)
	}
	fmt.Fprintf(b, "| **Total** | | %s | | | |\n\n", Duration(result.Elapsed))
}

func writeStories(b *strings.Builder, list stories.List) {
	b.WriteString("### Prioritized stories\n\n")
	b.WriteString("| # | Priority | Story |\n")
	b.WriteString("|---:|---|---|\n")
	for _, s := range list.SortByPriority().Stories {
		priority := string(s.Priority)
		if priority == "" {
			priority = "-"
		}
		fmt.Fprintf(b, "| %d | %s | %s |\n", s.Index, priority, cell(s.Text))
	}
	b.WriteString("\n")
}

func writeMockup(b *strings.Builder, res pipeline.StageResult) error {
	if res.Output == "" {
		b.WriteString("The answer held no HTML document. Model answer:\n\n")
		fmt.Fprintf(b, "````text\n%s\n````\n\n", strings.TrimSpace(res.Raw))
		return nil
	}
	outline, err := Outline(res.Output)
	if err != nil {
		return err
	}
	b.WriteString("### Outline\n\n")
	b.WriteString(outline)
	b.WriteString("\n\n")
	return nil
}

// Outline converts a mockup document to markdown
func Outline(document string) (string, error) {
	md, err := htmltomarkdown.ConvertString(document)
	if err != nil {
		return "", fmt.Errorf("mockup outline: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// Duration formats a duration rounded for humans
func Duration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

func cell(s string) string {
	return strings.ReplaceAll(oneLine(s), "|", `\|`)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
