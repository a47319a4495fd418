package pipeline

import "github.com/bububa/uxcrew/config"

// Stage names of the default pipeline
const (
	StageDescription = "description"
	StageCritique    = "critique"
	StageSuggestions = "suggestions"
	StageStories     = "stories"
	StageMockup      = "mockup"
)

// DefaultModel is used by the default stages
const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.3
)

// Stage describes one generation step
type Stage struct {
	// Name identifies the stage and its output
	Name  string `json:"name"`
	Title string `json:"title"`
	Phase Phase  `json:"phase"`
	// Role, Goal and Backstory make up the identity of the agent running the stage
	Role      string `json:"role"`
	Goal      string `json:"goal"`
	Backstory string `json:"backstory"`
	// Steps are the internal steps of the system prompt
	Steps          []string `json:"steps,omitempty"`
	ExpectedOutput string   `json:"expected_output"`
	// OutputInstructs are appended to the output instructions of the system prompt
	OutputInstructs []string `json:"output_instructs,omitempty"`
	// Template is the prompt template name, Name when empty
	Template string `json:"template,omitempty"`
	// DependsOn lists the earlier stages whose output the template may read
	DependsOn []string `json:"depends_on,omitempty"`
	// Vision attaches the request image to the stage prompt
	Vision bool `json:"vision"`
	// Extract passes the answer through the HTML extractor
	Extract     bool    `json:"extract"`
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// TemplateName returns the template of the stage
func (s Stage) TemplateName() string {
	if s.Template != "" {
		return s.Template
	}
	return s.Name
}

// DependsOnStage reports whether name is a declared dependency
func (s Stage) DependsOnStage(name string) bool {
	for _, v := range s.DependsOn {
		if v == name {
			return true
		}
	}
	return false
}

// DefaultStages returns the five stages: description, critique, suggestions, stories and mockup
func DefaultStages() []Stage {
	markdown := []string{"- Respond in markdown with short sections and bullet lists."}
	return []Stage{
		{
			Name:      StageDescription,
			Title:     "Image Description",
			Phase:     Phase1,
			Role:      "Image Description Agent",
			Goal:      "Fully describe the digital image of a UI/UX design, including its visible elements, design and intended purpose",
			Backstory: "You are responsible for analyzing images and describing their purpose in details",
			Steps: []string{
				"- Look at the whole screen first and name its type and audience.",
				"- Walk through the regions from top to bottom and list their components.",
				"- Note the visual design choices.",
			},
			ExpectedOutput:  "A complete description of the image and its purpose, ending with a layout tree",
			OutputInstructs: markdown,
			Vision:          true,
			Model:           DefaultModel,
			Temperature:     DefaultTemperature,
		},
		{
			Name:      StageCritique,
			Title:     "UX Critique",
			Phase:     Phase1,
			Role:      "UX Critique Agent",
			Goal:      "Critique the image based on its description and intended purpose provided by the image description agent",
			Backstory: "You critically evaluate images, especially containing UX designs and point out flaws, weaknesses and areas of improvement",
			Steps: []string{
				"- Compare the screen with its intended purpose.",
				"- Check usability heuristics and accessibility.",
				"- Rank the problems by their impact on users.",
			},
			ExpectedOutput:  "A complete critique of the image, highlighting design flaws and areas of improvement",
			OutputInstructs: markdown,
			DependsOn:       []string{StageDescription},
			Vision:          true,
			Model:           DefaultModel,
			Temperature:     DefaultTemperature,
		},
		{
			Name:      StageSuggestions,
			Title:     "UX Suggestions",
			Phase:     Phase1,
			Role:      "UX Suggestion Agent",
			Goal:      "Provide design and layout suggestions for the image based on the context provided by the image description agent and the UX critique agent",
			Backstory: "You are specialized in providing actionable suggestions to improve the design of website images",
			Steps: []string{
				"- Address every problem raised by the critique.",
				"- Keep suggestions concrete enough to implement.",
			},
			ExpectedOutput:  "A list of actionable suggestions for improving the image and layout based on image purpose and critique",
			OutputInstructs: markdown,
			DependsOn:       []string{StageDescription, StageCritique},
			Vision:          true,
			Model:           DefaultModel,
			Temperature:     DefaultTemperature,
		},
		{
			Name:      StageStories,
			Title:     "User Stories",
			Phase:     Phase1,
			Role:      "AI Product Manager",
			Goal:      "Write the user stories based on suggestions from the UX suggestion agent and prioritize the suggestions based on probable customer feedback",
			Backstory: "You act as an experienced product manager for a digital company prioritizing suggestions and creating user stories to guide improvements",
			Steps: []string{
				"- Turn every suggestion into a user story.",
				"- Estimate the customer impact of each story.",
			},
			ExpectedOutput:  "A list of prioritized improvements (rated Critical, Medium or Low) based on expected impact on customers along with user stories",
			OutputInstructs: []string{"- Follow the numbered list format of the request exactly."},
			DependsOn:       []string{StageDescription, StageCritique, StageSuggestions},
			Vision:          true,
			Model:           DefaultModel,
			Temperature:     DefaultTemperature,
		},
		{
			Name:      StageMockup,
			Title:     "Mockup",
			Phase:     Phase2,
			Role:      "UI Wireframe Generator",
			Goal:      "Generate an improved HTML mockup of the screen which applies the prioritized user stories",
			Backstory: "You are an expert front end developer turning UX recommendations into clean Tailwind CSS wireframes",
			Steps: []string{
				"- Rebuild the structure of the original screen.",
				"- Apply the improvements, Critical stories first.",
			},
			ExpectedOutput:  "A single complete HTML document",
			OutputInstructs: []string{"- Return only the HTML document starting with <!DOCTYPE html>, without commentary."},
			DependsOn:       []string{StageDescription, StageCritique, StageSuggestions, StageStories},
			Vision:          true,
			Extract:         true,
			Model:           DefaultModel,
			Temperature:     DefaultTemperature,
		},
	}
}

// TextOnly returns a copy of stages with vision turned off, for providers without image input.
// The image details stay in the system prompt context.
func TextOnly(stages []Stage) []Stage {
	ret := make([]Stage, len(stages))
	copy(ret, stages)
	for i := range ret {
		ret[i].Vision = false
	}
	return ret
}

// ApplyOverrides returns stages with the model, temperature and max tokens of the matching overrides.
// defaultModel replaces the model of every stage when not empty.
func ApplyOverrides(stages []Stage, defaultModel string, overrides map[string]config.Stage) []Stage {
	ret := make([]Stage, len(stages))
	copy(ret, stages)
	for i := range ret {
		if defaultModel != "" {
			ret[i].Model = defaultModel
		}
		o, ok := overrides[ret[i].Name]
		if !ok {
			continue
		}
		if o.Model != "" {
			ret[i].Model = o.Model
		}
		if o.Temperature != nil {
			ret[i].Temperature = *o.Temperature
		}
		if o.MaxTokens > 0 {
			ret[i].MaxTokens = o.MaxTokens
		}
	}
	return ret
}
