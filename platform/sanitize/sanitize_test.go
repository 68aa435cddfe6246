package sanitize

import "testing"

func TestStripHTML(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"<b>bold</b> move", "bold move"},
		{"  padded  ", "padded"},
		{"&lt;script&gt;alert(1)&lt;/script&gt;", "alert(1)"},
		{"<img src=x onerror=alert(1)>", ""},
	}
	for _, c := range cases {
		if got := StripHTML(c.in); got != c.want {
			t.Errorf("StripHTML(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTextCollapsesWhitespace(t *testing.T) {
	if got := Text("too   many\t\tspaces"); got != "too many spaces" {
		t.Errorf("Text() = %q", got)
	}
}

func TestTextPtr(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Fatalf("TextPtr(nil) should be nil")
	}
	in := "<i>desc</i>"
	got := TextPtr(&in)
	if got == nil || *got != "desc" {
		t.Fatalf("TextPtr(%q) = %v", in, got)
	}
}
