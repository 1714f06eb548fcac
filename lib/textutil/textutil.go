package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRegex = regexp.MustCompile(`[\s\p{Zs}]+`)

// Collapse trims s and replaces every run of whitespace, Unicode spaces such
// as U+00A0 and U+2003 included, with a single space.
func Collapse(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeLabel turns a table label like " Arrest Date: " into "arrest date".
// It is idempotent.
func NormalizeLabel(label string) string {
	label = strings.ToLower(Collapse(label))
	label = strings.TrimRightFunc(label, func(r rune) bool {
		return r == ':' || unicode.IsSpace(r)
	})
	return strings.TrimSpace(label)
}

// NormalizeName lower-cases a person's name and removes every non letter,
// so "DOE,  JOHN" and "doe john" compare equal.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, name)
}
