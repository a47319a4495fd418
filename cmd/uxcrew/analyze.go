package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bububa/uxcrew/components"
	"github.com/bububa/uxcrew/mockup"
	"github.com/bububa/uxcrew/pipeline"
	"github.com/bububa/uxcrew/report"
	"github.com/bububa/uxcrew/server"
	"github.com/bububa/uxcrew/stories"
)

func analyze(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file, $UXCREW_CONFIG when empty")
	envFile := fs.String("env", "", ".env file, ./.env when empty")
	out := fs.String("out", "", "output directory, uxcrew-<run id> when empty")
	goals := fs.String("goals", "", "comma separated redesign goals")
	notes := fs.String("notes", "", "notes passed to the prompts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("analyze takes exactly one image path")
	}

	a, err := newApp(ctx, *configPath, *envFile)
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	img, err := components.LoadImage(data, a.cfg.MaxImageDimension)
	if err != nil {
		return err
	}
	result, runErr := a.pipeline.Run(ctx, &pipeline.Request{
		Image: img,
		Goals: server.SplitGoals(*goals),
		Notes: *notes,
	})

	dir := *out
	if dir == "" {
		dir = "uxcrew-" + result.RunID
	}
	if err := writeOutputs(ctx, a, dir, result); err != nil {
		return errors.Join(runErr, err)
	}
	fmt.Printf("%s %s in %s, results in %s\n", result.RunID, result.State, report.Duration(result.Elapsed), dir)
	return runErr
}

func writeOutputs(ctx context.Context, a *app, dir string, result *pipeline.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	write := func(name string, content string) error {
		return os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
	}
	for _, res := range result.Stages() {
		name, content := res.Name+".md", res.Output
		if res.Name == pipeline.StageMockup {
			name = res.Name + ".html"
			if content == "" {
				name, content = res.Name+".raw.txt", res.Raw
			}
		}
		if err := write(name, content); err != nil {
			return err
		}
	}

	var list stories.List
	if text := result.Output(pipeline.StageStories); text != "" {
		var err error
		if list, err = a.extractor.Extract(ctx, text); err != nil {
			a.logger.Warn("extract stories", "error", err)
		}
	}
	if len(list.Stories) > 0 {
		f, err := os.Create(filepath.Join(dir, "stories.xlsx"))
		if err != nil {
			return err
		}
		if err := stories.WriteWorkbook(f, list); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	if doc := result.Output(pipeline.StageMockup); doc != "" {
		annotated, _, err := mockup.Annotate(doc, list.SortByPriority().Texts())
		if err != nil {
			return err
		}
		if err := write("mockup.annotated.html", annotated); err != nil {
			return err
		}
	}

	md, err := report.Markdown(result, list)
	if err != nil {
		return err
	}
	if err := write("report.md", md); err != nil {
		return err
	}
	bs, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return write("result.json", string(bs))
}
