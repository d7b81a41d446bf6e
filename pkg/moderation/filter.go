// Package moderation implements the review content policy: a length cap and a
// case-insensitive forbidden-word denylist.
package moderation

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrEmpty         = errors.New("content is empty")
	ErrTooLong       = errors.New("content is too long")
	ErrForbiddenWord = errors.New("content contains a forbidden word")
)

// Filter checks free text against the configured policy
type Filter struct {
	maxLength int
	words     []string // folded
}

// NewFilter builds a Filter. Blank words are ignored.
func NewFilter(maxLength int, forbidden []string) *Filter {
	f := &Filter{maxLength: maxLength}
	for _, w := range forbidden {
		folded := fold(strings.TrimSpace(w))
		if folded != "" {
			f.words = append(f.words, folded)
		}
	}
	return f
}

// MaxLength configured character cap
func (f *Filter) MaxLength() int { return f.maxLength }

// Check validates already-trimmed content.
// Length is counted in characters, not bytes.
func (f *Filter) Check(content string) error {
	if content == "" {
		return ErrEmpty
	}
	if utf8.RuneCountInString(content) > f.maxLength {
		return ErrTooLong
	}
	if _, found := f.FirstMatch(content); found {
		return ErrForbiddenWord
	}
	return nil
}

// FirstMatch returns the first forbidden entry contained in content
func (f *Filter) FirstMatch(content string) (string, bool) {
	if len(f.words) == 0 {
		return "", false
	}
	folded := fold(content)
	for _, w := range f.words {
		if strings.Contains(folded, w) {
			return w, true
		}
	}
	return "", false
}

// fold lowercases and strips diacritics so "Arnaque", "ARNAQUÉ" and "arnaqué"
// all compare equal to "arnaque".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}
