package server

import (
	"time"

	"github.com/bububa/uxcrew/components"
	"github.com/bububa/uxcrew/pipeline"
	"github.com/bububa/uxcrew/stories"
)

// Stage status shown on the run page
const (
	stageDone    = "done"
	stageRunning = "running"
	stageWaiting = "waiting"
	stageFailed  = "failed"
	stageSkipped = "skipped"
)

type indexView struct {
	Status         Status
	Stages         []pipeline.Stage
	Runs           []runSummary
	Error          string
	MaxUploadBytes int64
}

type runSummary struct {
	ID          string
	State       pipeline.State
	Created     time.Time
	Elapsed     time.Duration
	FailedStage string
}

func summaries(entries []*Entry) []runSummary {
	ret := make([]runSummary, 0, len(entries))
	for _, e := range entries {
		result := e.Run.Result()
		ret = append(ret, runSummary{
			ID:          e.Run.ID(),
			State:       result.State,
			Created:     e.Created,
			Elapsed:     result.Elapsed,
			FailedStage: result.FailedStage(),
		})
	}
	return ret
}

type stageView struct {
	Name         string
	Title        string
	Phase        pipeline.Phase
	Status       string
	Output       string
	Raw          string
	Model        string
	Elapsed      time.Duration
	PromptTokens int
	Usage        components.LLMUsage
}

type runView struct {
	ID          string
	State       pipeline.State
	Running     bool
	Refresh     int
	Elapsed     time.Duration
	Error       string
	FailedStage string
	Image       string
	HasImage    bool
	Goals       []string
	Notes       string
	Stages      []stageView
	Stories     []stories.Story
	HasMockup   bool
	Usage       components.LLMUsage
}

func newRunView(e *Entry, result *pipeline.Result, stages []pipeline.Stage, list stories.List) runView {
	req := e.Run.Request()
	view := runView{
		ID:          result.RunID,
		State:       result.State,
		Running:     !result.State.Terminal(),
		Refresh:     int(RefreshInterval / time.Second),
		Elapsed:     result.Elapsed,
		FailedStage: result.FailedStage(),
		Goals:       req.Goals,
		Notes:       req.Notes,
		Stories:     list.SortByPriority().Stories,
		HasMockup:   result.Output(pipeline.StageMockup) != "",
		Usage:       result.Usage(),
	}
	if result.Err != nil {
		view.Error = result.Err.Error()
	}
	if req.Image != nil {
		view.HasImage = true
		view.Image = req.Image.String()
	}
	pending := true
	for _, stage := range stages {
		sv := stageView{
			Name:  stage.Name,
			Title: stage.Title,
			Phase: stage.Phase,
			Model: stage.Model,
		}
		res, ok := result.Get(stage.Name)
		switch {
		case ok:
			sv.Status = stageDone
			sv.Output = res.Output
			sv.Raw = res.Raw
			sv.Model = res.Model
			sv.Elapsed = res.Elapsed
			sv.PromptTokens = res.PromptTokens
			if res.Usage != nil {
				sv.Usage = *res.Usage
			}
			if view.FailedStage == stage.Name {
				sv.Status = stageFailed
			}
		case view.FailedStage == stage.Name:
			sv.Status = stageFailed
			pending = false
		case result.State == pipeline.Failed:
			sv.Status = stageSkipped
		case pending && view.Running:
			sv.Status = stageRunning
			pending = false
		default:
			sv.Status = stageWaiting
		}
		view.Stages = append(view.Stages, sv)
	}
	return view
}
