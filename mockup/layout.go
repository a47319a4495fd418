package mockup

import "strings"

// LayoutTree returns the bullet list lines ("- " items, any indentation) of a page description.
// Empty when the description has none.
func LayoutTree(description string) string {
	var lines []string
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.HasPrefix(strings.TrimSpace(line), "- ") {
			lines = append(lines, line)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
