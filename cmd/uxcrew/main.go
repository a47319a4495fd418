// Command uxcrew reviews UI screenshots with a crew of LLM agents.
//
//	uxcrew [serve] [-config uxcrew.yaml] [-env .env] [-addr :8501]
//	uxcrew analyze [-config uxcrew.yaml] [-out dir] [-goals "a,b"] [-notes text] image.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bububa/uxcrew/components"
	"github.com/bububa/uxcrew/components/generator"
	"github.com/bububa/uxcrew/components/generator/providers"
	"github.com/bububa/uxcrew/config"
	"github.com/bububa/uxcrew/metrics"
	"github.com/bububa/uxcrew/pipeline"
	"github.com/bububa/uxcrew/prompts"
	"github.com/bububa/uxcrew/stories"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "uxcrew: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "serve":
		return serve(ctx, args)
	case "analyze":
		return analyze(ctx, args)
	case "help":
		usage(os.Stdout)
		return nil
	}
	usage(os.Stderr)
	return fmt.Errorf("unknown command %q", cmd)
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage:
  uxcrew [serve] [flags]            start the web dashboard
  uxcrew analyze [flags] <image>    review one image and write the results to a directory

Run "uxcrew <command> -h" for the flags of a command.
`)
}

// app holds what both commands build from the configuration
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	client    generator.Generator
	pipeline  *pipeline.Pipeline
	collector *metrics.Collector
	extractor *stories.Extractor
}

func (a *app) Close() {
	if closer, ok := a.client.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("close client", "error", err)
		}
	}
}

func newApp(ctx context.Context, configPath string, envFile string) (*app, error) {
	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}
	cfg, err := config.Load(configPath, envFiles...)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	client, err := providers.New(ctx, &cfg.Provider)
	if err != nil {
		return nil, err
	}
	store := prompts.New()
	if cfg.TemplatesDir != "" {
		override, err := prompts.NewFromDir(cfg.TemplatesDir)
		if err != nil {
			return nil, err
		}
		store = prompts.Overlay(store, override)
	}
	counter, err := components.NewTokenCounter(cfg.TokenEncoding)
	if err != nil {
		return nil, err
	}
	stages := pipeline.ApplyOverrides(pipeline.DefaultStages(), cfg.Provider.Model, cfg.Stages)
	if !generator.SupportsImages(client.Provider()) {
		logger.Warn("provider takes no image input, stages only get the image details", "provider", client.Provider())
		stages = pipeline.TextOnly(stages)
	}
	collector := metrics.New(metrics.DefaultNamespace)
	p, err := pipeline.New(client,
		pipeline.WithStages(stages...),
		pipeline.WithTemplates(store),
		pipeline.WithLogger(logger),
		pipeline.WithObserver(collector),
		pipeline.WithTokenCounter(counter),
		pipeline.WithTimeout(cfg.RunTimeout),
	)
	if err != nil {
		return nil, err
	}
	extractor := stories.NewExtractor(nil, "")
	if cfg.Stories.Structured {
		if cfg.Provider.Name != generator.ProviderOpenAI {
			logger.Warn("structured story extraction needs the openai provider, parsing text instead", "provider", cfg.Provider.Name)
		} else {
			model := cfg.Stories.Model
			if model == "" {
				model = cfg.Provider.Model
			}
			extractor = stories.NewExtractor(providers.NewOpenAIClient(&cfg.Provider), model)
		}
	}
	logger.Info("pipeline ready", "provider", cfg.Provider.Name, "model", cfg.Provider.Model, "stages", len(p.Stages()), "templates", strings.Join(store.Names(), ","))
	return &app{
		cfg:       cfg,
		logger:    logger,
		client:    client,
		pipeline:  p,
		collector: collector,
		extractor: extractor,
	}, nil
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}
