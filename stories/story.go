// Package stories turns the output of the stories stage into prioritized user stories
package stories

import (
	"regexp"
	"sort"
	"strings"
)

// Priority is the expected customer impact of a story
type Priority string

const (
	Critical Priority = "Critical"
	High     Priority = "High"
	Medium   Priority = "Medium"
	Low      Priority = "Low"
)

// Rank orders priorities, unknown ones last
func (p Priority) Rank() int {
	switch p {
	case Critical:
		return 0
	case High:
		return 1
	case Medium:
		return 2
	case Low:
		return 3
	}
	return 4
}

// ParsePriority matches a priority name case insensitively
func ParsePriority(s string) Priority {
	for _, p := range []Priority{Critical, High, Medium, Low} {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p
		}
	}
	return ""
}

// Story is a single user story
type Story struct {
	// Index is the position of the story in the stage output, from 1
	Index     int      `json:"index" validate:"gte=1" jsonschema:"title=index,description=Position of the story in the list starting from 1"`
	Text      string   `json:"text" validate:"required" jsonschema:"title=text,description=The full user story sentence in the form As a <user> I want to <goal> so that <benefit>"`
	Role      string   `json:"role,omitempty" jsonschema:"title=role,description=The type of user"`
	Goal      string   `json:"goal,omitempty" jsonschema:"title=goal,description=What the user wants to do"`
	Benefit   string   `json:"benefit,omitempty" jsonschema:"title=benefit,description=Why the user wants it"`
	Priority  Priority `json:"priority,omitempty" validate:"omitempty,oneof=Critical High Medium Low" jsonschema:"title=priority,enum=Critical,enum=High,enum=Medium,enum=Low,description=Expected impact on customers"`
	Rationale string   `json:"rationale,omitempty" jsonschema:"title=rationale,description=One sentence on the expected customer impact"`
}

// List is a list of stories
type List struct {
	Stories []Story `json:"stories" validate:"dive" jsonschema:"title=stories,description=The user stories in the order they appear"`
}

// Texts returns the story sentences
func (l List) Texts() []string {
	ret := make([]string, 0, len(l.Stories))
	for _, s := range l.Stories {
		ret = append(ret, s.Text)
	}
	return ret
}

// SortByPriority orders stories from Critical to Low, keeping the original order within a priority
func (l List) SortByPriority() List {
	ret := List{Stories: make([]Story, len(l.Stories))}
	copy(ret.Stories, l.Stories)
	sort.SliceStable(ret.Stories, func(i, j int) bool {
		return ret.Stories[i].Priority.Rank() < ret.Stories[j].Priority.Rank()
	})
	return ret
}

var (
	listMarkerRe  = regexp.MustCompile(`^(?:\d+[.)]|[-*+])\s+`)
	storyStartRe  = regexp.MustCompile(`(?i)^as an?\s`)
	prefixRe      = regexp.MustCompile(`(?i)^(critical|high|medium|low)(?:\s+priority)?\s*[:–-]\s*`)
	storyRe       = regexp.MustCompile(`(?i)^As an?\s+(.+?),?\s+I (?:want|need|would like)(?:\s+to)?\s+(.+?)(?:,?\s+so that\s+(.+?))?\.?$`)
	priorityRe    = regexp.MustCompile(`(?i)\bpriority\b\W*(critical|high|medium|low)\b`)
	bracketRe     = regexp.MustCompile(`(?i)[(\[](critical|high|medium|low)(?:\s+priority)?[)\]]`)
	headingRe     = regexp.MustCompile(`(?i)^(?:#+\s*)?(critical|high|medium|low)(?:\s+priority)?:?$`)
	rationaleRe   = regexp.MustCompile(`(?i)^(?:rationale|reason|impact)\s*:\s*(.+)$`)
	markdownStrip = strings.NewReplacer("**", "", "__", "", "`", "")
)

// Parse extracts user stories from free text. A story starts on a line beginning, after an
// optional list marker, with "As a" or "As an". Priorities are read from "Priority: X" lines,
// bracketed "(X)" markers or section headings naming a priority.
func Parse(text string) List {
	var (
		ret     List
		section Priority
		current *Story
	)
	flush := func() {
		if current != nil {
			ret.Stories = append(ret.Stories, *current)
			current = nil
		}
	}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(markdownStrip.Replace(raw))
		if line == "" {
			continue
		}
		if m := headingRe.FindStringSubmatch(line); m != nil {
			flush()
			section = ParsePriority(m[1])
			continue
		}
		body := listMarkerRe.ReplaceAllString(line, "")
		priority := section
		if m := prefixRe.FindStringSubmatch(body); m != nil && storyStartRe.MatchString(body[len(m[0]):]) {
			priority = ParsePriority(m[1])
			body = body[len(m[0]):]
		}
		if storyStartRe.MatchString(body) {
			flush()
			current = newStory(len(ret.Stories)+1, body, priority)
			continue
		}
		if current == nil {
			continue
		}
		if m := priorityRe.FindStringSubmatch(body); m != nil {
			current.Priority = ParsePriority(m[1])
			continue
		}
		if m := rationaleRe.FindStringSubmatch(body); m != nil {
			current.Rationale = strings.TrimSpace(m[1])
		}
	}
	flush()
	return ret
}

func newStory(index int, line string, section Priority) *Story {
	story := &Story{Index: index, Priority: section}
	if m := priorityRe.FindStringSubmatchIndex(line); m != nil {
		story.Priority = ParsePriority(line[m[2]:m[3]])
		line = line[:m[0]]
	}
	if m := bracketRe.FindStringSubmatchIndex(line); m != nil {
		story.Priority = ParsePriority(line[m[2]:m[3]])
		line = line[:m[0]] + line[m[1]:]
	}
	line = strings.TrimRight(strings.TrimSpace(line), " -–:|")
	story.Text = line
	if m := storyRe.FindStringSubmatch(line); m != nil {
		story.Role = strings.TrimSpace(m[1])
		story.Goal = strings.TrimSpace(m[2])
		story.Benefit = strings.TrimSpace(m[3])
	}
	return story
}
