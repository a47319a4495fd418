package mockup

import "testing"

func TestLayoutTree(t *testing.T) {
	description := `The page is a login screen.

Layout tree:
- Header
  - Logo
  - Navigation
- Main
  - Login form
    - Email field
Some closing remark with a - dash.`
	want := `- Header
  - Logo
  - Navigation
- Main
  - Login form
    - Email field`
	if got := LayoutTree(description); got != want {
		t.Errorf("LayoutTree() =\n%s\nwant\n%s", got, want)
	}
	if got := LayoutTree("no bullets"); got != "" {
		t.Errorf("LayoutTree() = %q, want empty", got)
	}
}
