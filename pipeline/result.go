package pipeline

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/bububa/uxcrew/components"
	"github.com/bububa/uxcrew/schema"
)

// Request is the input of a run
type Request struct {
	// Image is the uploaded screenshot, optional
	Image *schema.Image
	// Goals are redesign goals shared by every stage
	Goals []string
	// Notes is free text passed to the templates
	Notes string
}

// StageResult is the outcome of one stage
type StageResult struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Phase Phase  `json:"phase"`
	// SystemPrompt and Input are the resolved prompts sent to the model
	SystemPrompt string `json:"system_prompt"`
	Input        string `json:"input"`
	// Output is the stage output, the extracted HTML for an extracting stage
	Output string `json:"output"`
	// Raw is the model answer
	Raw          string               `json:"raw"`
	Model        string               `json:"model,omitempty"`
	Usage        *components.LLMUsage `json:"usage,omitempty"`
	PromptTokens int                  `json:"prompt_tokens"`
	StartedAt    time.Time            `json:"started_at"`
	Elapsed      time.Duration        `json:"elapsed"`
}

// Result is the ordered collection of stage results of a run
type Result struct {
	RunID     string
	State     State
	StartedAt time.Time
	Elapsed   time.Duration
	// Err is the terminal error of a failed run
	Err    error
	stages []StageResult
}

func (r *Result) add(res StageResult) {
	r.stages = append(r.stages, res)
}

func (r *Result) clone() *Result {
	ret := *r
	ret.stages = make([]StageResult, len(r.stages))
	copy(ret.stages, r.stages)
	return &ret
}

// Get returns the result of a stage
func (r *Result) Get(name string) (StageResult, bool) {
	for _, v := range r.stages {
		if v.Name == name {
			return v, true
		}
	}
	return StageResult{}, false
}

// Output returns the output of a stage, empty when the stage has no result
func (r *Result) Output(name string) string {
	v, _ := r.Get(name)
	return v.Output
}

// Names returns stage names in execution order
func (r *Result) Names() []string {
	ret := make([]string, 0, len(r.stages))
	for _, v := range r.stages {
		ret = append(ret, v.Name)
	}
	return ret
}

// Stages returns stage results in execution order
func (r *Result) Stages() []StageResult {
	ret := make([]StageResult, len(r.stages))
	copy(ret, r.stages)
	return ret
}

// Len returns the number of stage results
func (r *Result) Len() int {
	return len(r.stages)
}

// Usage returns the provider usage summed over stages
func (r *Result) Usage() components.LLMUsage {
	var ret components.LLMUsage
	for _, v := range r.stages {
		ret.Merge(v.Usage)
	}
	return ret
}

// FailedStage returns the stage the terminal error points to
func (r *Result) FailedStage() string {
	return FailedStage(r.Err)
}

// MarshalJSON encodes stages as an object keyed by stage name, in execution order
func (r *Result) MarshalJSON() ([]byte, error) {
	head := struct {
		RunID       string              `json:"run_id"`
		State       State               `json:"state"`
		StartedAt   time.Time           `json:"started_at"`
		Elapsed     time.Duration       `json:"elapsed"`
		Error       string              `json:"error,omitempty"`
		FailedStage string              `json:"failed_stage,omitempty"`
		Usage       components.LLMUsage `json:"usage"`
		Stages      json.RawMessage     `json:"stages"`
	}{
		RunID:       r.RunID,
		State:       r.State,
		StartedAt:   r.StartedAt,
		Elapsed:     r.Elapsed,
		FailedStage: r.FailedStage(),
		Usage:       r.Usage(),
	}
	if r.Err != nil {
		head.Error = r.Err.Error()
	}
	buf := new(bytes.Buffer)
	buf.WriteByte('{')
	for i, v := range r.stages {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(v.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	head.Stages = buf.Bytes()
	return json.Marshal(head)
}
