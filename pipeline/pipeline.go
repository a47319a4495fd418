// Package pipeline runs the ordered review stages over an uploaded screen
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"

	"github.com/bububa/uxcrew/agents"
	"github.com/bububa/uxcrew/components"
	"github.com/bububa/uxcrew/components/generator"
	"github.com/bububa/uxcrew/components/systemprompt"
	"github.com/bububa/uxcrew/components/systemprompt/cot"
	"github.com/bububa/uxcrew/mockup"
	"github.com/bububa/uxcrew/prompts"
	"github.com/bububa/uxcrew/schema"
)

// Context provider titles of the stage system prompts
const (
	GoalsContextTitle = "Redesign goals"
	ImageContextTitle = "Uploaded image"
	// ImageNotAttached completes the image context of stages running without vision
	ImageNotAttached = "The image is not attached, rely on the request notes and the earlier stage outputs."
)

// Pipeline runs its stages in order, one run per request
type Pipeline struct {
	client    generator.Generator
	stages    []Stage
	templates *prompts.Store
	observer  Observer
	counter   components.TokenCounter
	timeout   time.Duration
}

// New validates the stages and their templates and returns a Pipeline.
// Every validation failure is a *ConfigError.
func New(client generator.Generator, opts ...Option) (*Pipeline, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if client == nil {
		return nil, &ConfigError{Err: agents.ErrNoClient}
	}
	if o.stages == nil {
		o.stages = DefaultStages()
	}
	if o.templates == nil {
		o.templates = prompts.New()
	}
	if o.counter == nil {
		o.counter = components.WordsTokenCounter{}
	}
	observers := Observers{NewLogObserver(o.logger)}
	observers = append(observers, o.observers...)
	p := &Pipeline{
		client:    client,
		stages:    make([]Stage, len(o.stages)),
		templates: o.templates,
		observer:  observers,
		counter:   o.counter,
		timeout:   o.timeout,
	}
	copy(p.stages, o.stages)
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Stages returns a copy of the stage descriptors in execution order
func (p *Pipeline) Stages() []Stage {
	ret := make([]Stage, len(p.stages))
	copy(ret, p.stages)
	return ret
}

func (p *Pipeline) validate() error {
	if len(p.stages) == 0 {
		return &ConfigError{Err: errors.New("no stages")}
	}
	if err := validateGraph(p.stages); err != nil {
		return err
	}
	last := len(p.stages) - 1
	for i, s := range p.stages {
		switch {
		case s.Phase != Phase1 && s.Phase != Phase2:
			return &ConfigError{Stage: s.Name, Err: fmt.Errorf("unknown phase %d", s.Phase)}
		case i > 0 && s.Phase < p.stages[i-1].Phase:
			return &ConfigError{Stage: s.Name, Err: errors.New("phase goes backwards")}
		case s.Extract != (i == last):
			return &ConfigError{Stage: s.Name, Err: errors.New("only the last stage extracts")}
		case s.Temperature < 0 || s.Temperature > 2:
			return &ConfigError{Stage: s.Name, Err: fmt.Errorf("temperature %v out of range", s.Temperature)}
		}
	}
	if p.stages[0].Phase != Phase1 {
		return &ConfigError{Stage: p.stages[0].Name, Err: errors.New("phase 1 is empty")}
	}
	if p.stages[last].Phase != Phase2 {
		return &ConfigError{Stage: p.stages[last].Name, Err: errors.New("phase 2 is empty")}
	}
	if provider := p.client.Provider(); !generator.SupportsImages(provider) {
		for _, s := range p.stages {
			if s.Vision {
				return &ConfigError{Stage: s.Name, Err: fmt.Errorf("%w: %s, use TextOnly stages", generator.ErrImageUnsupported, provider)}
			}
		}
	}
	placeholders := make(map[string]string, len(p.stages))
	for _, s := range p.stages {
		placeholders[s.Name] = fmt.Sprintf("- %s output", s.Name)
	}
	samples := []*Request{
		{},
		{
			Image: &schema.Image{Format: schema.FormatPNG, Width: 1, Height: 1},
			Goals: []string{"goal"},
			Notes: "notes",
		},
	}
	for i := range p.stages {
		for _, req := range samples {
			if _, err := p.render(&p.stages[i], req, placeholders); err != nil {
				return &ConfigError{Stage: p.stages[i].Name, Err: err}
			}
		}
	}
	return nil
}

// validateGraph checks names and dependencies on a DAG of the stages
func validateGraph(stages []Stage) error {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	index := make(map[string]int, len(stages))
	for i, s := range stages {
		if strings.TrimSpace(s.Name) == "" {
			return &ConfigError{Err: fmt.Errorf("stage %d has no name", i)}
		}
		if err := g.AddVertex(s.Name); err != nil {
			if errors.Is(err, graph.ErrVertexAlreadyExists) {
				return &ConfigError{Stage: s.Name, Err: errors.New("duplicate stage name")}
			}
			return &ConfigError{Stage: s.Name, Err: err}
		}
		index[s.Name] = i
	}
	for i, s := range stages {
		for _, dep := range s.DependsOn {
			idx, ok := index[dep]
			if !ok {
				return &ConfigError{Stage: s.Name, Err: fmt.Errorf("unknown dependency %q", dep)}
			}
			if idx >= i {
				return &ConfigError{Stage: s.Name, Err: fmt.Errorf("dependency %q does not run earlier", dep)}
			}
			if err := g.AddEdge(dep, s.Name); err != nil {
				if errors.Is(err, graph.ErrEdgeAlreadyExists) {
					return &ConfigError{Stage: s.Name, Err: fmt.Errorf("duplicate dependency %q", dep)}
				}
				return &ConfigError{Stage: s.Name, Err: fmt.Errorf("dependency %q: %w", dep, err)}
			}
		}
	}
	return nil
}

// Render resolves the system and user prompts of a stage from the request and earlier outputs
func (p *Pipeline) Render(stage *Stage, req *Request, outputs map[string]string) (string, string, error) {
	user, err := p.render(stage, req, outputs)
	if err != nil {
		return "", "", err
	}
	return SystemPrompt(stage, req).Generate(), user, nil
}

func (p *Pipeline) render(stage *Stage, req *Request, outputs map[string]string) (string, error) {
	tpl, err := p.templates.Parse(stage.TemplateName(), funcs(stage, outputs))
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	if err := tpl.Execute(&buf, templateData(req)); err != nil {
		return "", fmt.Errorf("render template %s: %w", stage.TemplateName(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// funcs returns the template functions reading earlier outputs, limited to the declared dependencies
func funcs(stage *Stage, outputs map[string]string) template.FuncMap {
	output := func(name string) (string, error) {
		if !stage.DependsOnStage(name) {
			return "", fmt.Errorf("%w: %s reads %s", ErrUndeclaredDependency, stage.Name, name)
		}
		return outputs[name], nil
	}
	return template.FuncMap{
		"output": output,
		"layout": func(name string) (string, error) {
			v, err := output(name)
			if err != nil {
				return "", err
			}
			return mockup.LayoutTree(v), nil
		},
	}
}

func templateData(req *Request) prompts.Data {
	data := prompts.Data{
		Goals: nonEmpty(req.Goals),
		Notes: strings.TrimSpace(req.Notes),
	}
	if img := req.Image; img != nil {
		data.Image = prompts.ImageInfo{
			Present: true,
			Format:  img.Format,
			Width:   img.Width,
			Height:  img.Height,
		}
	}
	return data
}

// SystemPrompt returns the chain of thought system prompt generator of a stage
func SystemPrompt(stage *Stage, req *Request) *cot.Generator {
	gen := cot.New(
		cot.WithPersona(stage.Role, stage.Goal, stage.Backstory),
		cot.WithSteps(stage.Steps...),
		cot.WithExpectedOutput(stage.ExpectedOutput),
		cot.WithOutputInstructs(stage.OutputInstructs...),
	)
	if req == nil {
		return gen
	}
	if goals := nonEmpty(req.Goals); len(goals) > 0 {
		gen.AddContextProviders(systemprompt.NewStatic(GoalsContextTitle, fmt.Sprintf(
			"The following redesign goals should be considered: %s. Please reflect these goals while analyzing or improving the UI.",
			strings.Join(goals, ", "),
		)))
	}
	if img := req.Image; img != nil {
		info := img.String()
		if !stage.Vision {
			info += ". " + ImageNotAttached
		}
		gen.AddContextProviders(systemprompt.NewStatic(ImageContextTitle, info))
	}
	return gen
}

func nonEmpty(items []string) []string {
	var ret []string
	for _, v := range items {
		if v = strings.TrimSpace(v); v != "" {
			ret = append(ret, v)
		}
	}
	return ret
}

// Start begins a run in a new goroutine, the run is in Phase1Running on return
func (p *Pipeline) Start(ctx context.Context, req *Request) *Run {
	run := newRun(req)
	if err := run.transition(Phase1Running); err != nil {
		// a fresh run is always NotStarted
		panic(err)
	}
	go p.execute(ctx, run)
	return run
}

// Run executes the stages synchronously, the result holds every stage finished before an error
func (p *Pipeline) Run(ctx context.Context, req *Request) (*Result, error) {
	return p.Start(ctx, req).Wait()
}

func (p *Pipeline) execute(ctx context.Context, run *Run) {
	defer close(run.done)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	run.start()
	err := p.loop(ctx, run)
	if err != nil {
		if transErr := run.transition(Failed); transErr != nil {
			err = errors.Join(err, transErr)
		}
	} else if transErr := run.transition(Complete); transErr != nil {
		err = transErr
		run.state.Store(int32(Failed))
	}
	run.finish(err)
	p.observer.RunFinished(ctx, run.Result())
}

func (p *Pipeline) loop(ctx context.Context, run *Run) error {
	req := run.Request()
	outputs := make(map[string]string, len(p.stages))
	for i := range p.stages {
		stage := &p.stages[i]
		if run.State() != stage.Phase.running() {
			if err := run.transition(Phase1Done); err != nil {
				return err
			}
			if err := run.transition(Phase2Running); err != nil {
				return err
			}
		}
		res, err := p.runStage(ctx, run.ID(), stage, &req, outputs)
		if err != nil {
			var extractionErr *ExtractionError
			if errors.As(err, &extractionErr) {
				run.add(res)
			}
			p.observer.StageFailed(ctx, run.ID(), stage, err)
			return err
		}
		run.add(res)
		outputs[stage.Name] = res.Output
		p.observer.StageFinished(ctx, run.ID(), &res)
	}
	return nil
}

func (p *Pipeline) runStage(ctx context.Context, runID string, stage *Stage, req *Request, outputs map[string]string) (StageResult, error) {
	res := StageResult{
		Name:      stage.Name,
		Title:     stage.Title,
		Phase:     stage.Phase,
		Model:     stage.Model,
		StartedAt: time.Now(),
	}
	if err := ctx.Err(); err != nil {
		return res, &StageError{Stage: stage.Name, Err: err}
	}
	user, err := p.render(stage, req, outputs)
	if err != nil {
		return res, &StageError{Stage: stage.Name, Err: err}
	}
	agent := agents.NewAgent(
		agents.WithClient(p.client),
		agents.WithSystemPromptGenerator(SystemPrompt(stage, req)),
		agents.WithModel(stage.Model),
		agents.WithTemperature(stage.Temperature),
		agents.WithMaxTokens(stage.MaxTokens),
		agents.WithName(stage.Name),
	)
	agent.SetStartHook(func(ctx context.Context, _ *agents.Agent, _ *schema.Input) {
		p.observer.StageStarted(ctx, runID, stage)
	})
	res.SystemPrompt = agent.SystemPrompt()
	res.Input = user
	res.PromptTokens = p.counter.Count(res.SystemPrompt) + p.counter.Count(user)

	input := schema.NewInput(user)
	if stage.Vision && req.Image != nil {
		input.WithImages(*req.Image)
	}
	var (
		output  schema.String
		llmResp components.LLMResponse
	)
	err = agent.Run(ctx, input, &output, &llmResp)
	res.Elapsed = time.Since(res.StartedAt)
	if err != nil {
		return res, &StageError{Stage: stage.Name, Err: err}
	}
	res.Raw = string(output)
	res.Usage = llmResp.Usage
	if llmResp.Model != "" {
		res.Model = llmResp.Model
	}
	if !stage.Extract {
		res.Output = res.Raw
		return res, nil
	}
	doc, err := mockup.Extract(res.Raw)
	if err != nil {
		return res, &ExtractionError{Stage: stage.Name, Raw: res.Raw, Err: err}
	}
	res.Output = doc
	return res, nil
}
