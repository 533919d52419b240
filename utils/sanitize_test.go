package utils

import "testing"

func TestSanitizeStripsMarkup(t *testing.T) {
	in := `hello <script>alert("x")</script><b>world</b>`
	out := Sanitize(in)
	if out != "helloworld" && out != "hello world" {
		// StrictPolicy drops all tags and their script content.
		t.Errorf("Sanitize(%q) = %q", in, out)
	}
}

func TestSanitizePlainTextUntouched(t *testing.T) {
	if got := Sanitize("just a caption"); got != "just a caption" {
		t.Errorf("plain text changed: %q", got)
	}
}
