// Package faq decides whether a ticket matches a canned answer before any
// human (or any further AI spend) gets involved.
package faq

import (
	"strings"

	"github.com/qoldai/helpdesk/internal/domain"
)

// MatchResult is the outcome of a FAQ lookup.
type MatchResult struct {
	IsFAQ    bool
	Answer   string
	Category string
}

// Matcher holds an immutable FAQ snapshot. Pure: no I/O, deterministic.
type Matcher struct {
	entries []Entry
}

// NewMatcher builds a matcher over the given snapshot.
func NewMatcher(entries []Entry) *Matcher {
	return &Matcher{entries: entries}
}

// Match counts how many of each entry's keywords occur as case-insensitive
// substrings of subject+description. Two or more hits on a single entry is a
// match; entries are checked in declaration order and the first one over the
// threshold wins, with no ranking across entries. Substring matching is
// intentional: it over-matches on keyword fragments, which is acceptable for
// this corpus.
func (m *Matcher) Match(subject, description string, language domain.Language) MatchResult {
	text := strings.ToLower(subject + " " + description)

	for _, entry := range m.entries {
		hits := 0
		for _, keyword := range entry.Keywords {
			if strings.Contains(text, strings.ToLower(keyword)) {
				hits++
			}
		}
		if hits >= 2 {
			return MatchResult{
				IsFAQ:    true,
				Answer:   answerFor(entry, language),
				Category: entry.Category,
			}
		}
	}
	return MatchResult{}
}

// answerFor picks the requested language variant, falling back to Russian.
func answerFor(entry Entry, language domain.Language) string {
	if answer, ok := entry.Answers[language]; ok && answer != "" {
		return answer
	}
	return entry.Answers[domain.LanguageRU]
}
