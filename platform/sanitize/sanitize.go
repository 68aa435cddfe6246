// Package sanitize cleans user-provided text before storage. Job
// descriptions, task names, and estimate line descriptions all pass
// through here so markup never reaches the database.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`[ \t]{2,}`)
)

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
)

// StripHTML removes HTML tags from a string. Entities are decoded and the
// result stripped again, so encoded tags do not survive.
func StripHTML(s string) string {
	out := tagRe.ReplaceAllString(s, "")
	out = entityReplacer.Replace(out)
	out = tagRe.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// Text cleans a user-provided text field: tags stripped, runs of spaces
// and tabs collapsed.
func Text(s string) string {
	return whitespaceRe.ReplaceAllString(StripHTML(s), " ")
}

// TextPtr applies Text to an optional string.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	out := Text(*s)
	return &out
}
