package stories

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	text := `Here are the prioritized improvements:

1. **As a shopper, I want to search products, so that I find items fast.**
   Priority: Critical
   Rationale: Search is the main entry point.
2. As a visitor, I want to see prices on cards so that I can compare offers.
   - **Priority:** Medium
3. As an admin, I want to export orders (Low)

### High
- As a new user, I want to sign up with Google, so that onboarding is quicker.
- Low: As a reader, I want to change the font size.

As always, feedback is welcome.`
	want := List{Stories: []Story{
		{Index: 1, Text: "As a shopper, I want to search products, so that I find items fast.", Role: "shopper", Goal: "search products", Benefit: "I find items fast", Priority: Critical, Rationale: "Search is the main entry point."},
		{Index: 2, Text: "As a visitor, I want to see prices on cards so that I can compare offers.", Role: "visitor", Goal: "see prices on cards", Benefit: "I can compare offers", Priority: Medium},
		{Index: 3, Text: "As an admin, I want to export orders", Role: "admin", Goal: "export orders", Priority: Low},
		{Index: 4, Text: "As a new user, I want to sign up with Google, so that onboarding is quicker.", Role: "new user", Goal: "sign up with Google", Benefit: "onboarding is quicker", Priority: High},
		{Index: 5, Text: "As a reader, I want to change the font size.", Role: "reader", Goal: "change the font size", Priority: Low},
	}}
	if diff := cmp.Diff(want, Parse(text)); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmpty(t *testing.T) {
	if got := Parse("No stories here."); len(got.Stories) != 0 {
		t.Errorf("Parse() = %v, want none", got)
	}
}

func TestSortByPriority(t *testing.T) {
	list := List{Stories: []Story{
		{Index: 1, Priority: Low},
		{Index: 2},
		{Index: 3, Priority: Critical},
		{Index: 4, Priority: Low},
	}}
	var got []int
	for _, s := range list.SortByPriority().Stories {
		got = append(got, s.Index)
	}
	if diff := cmp.Diff([]int{3, 1, 4, 2}, got); diff != "" {
		t.Errorf("SortByPriority() mismatch (-want +got):\n%s", diff)
	}
	if list.Stories[0].Index != 1 {
		t.Error("SortByPriority() modified the receiver")
	}
}

func TestParsePriority(t *testing.T) {
	for in, want := range map[string]Priority{"critical": Critical, " HIGH ": High, "medium": Medium, "Low": Low, "urgent": ""} {
		if got := ParsePriority(in); got != want {
			t.Errorf("ParsePriority(%q) = %q, want %q", in, got, want)
		}
	}
}
