// Package command detects spoken control words in transcript fragments.
package command

import (
	"fmt"
	"strings"
	"unicode"

	"handsfree/internal/domain"
)

// leadingWindow bounds how many tokens of a command burst are inspected.
// A small window keeps paused-state listening cheap and avoids matching a
// command word mentioned later in natural speech.
const leadingWindow = 3

// punctCutset covers punctuation STT engines attach to spoken words.
const punctCutset = ".,!?;:"

// Matcher holds a validated command word set. All matching methods are pure
// and never mutate their input.
type Matcher struct {
	pauseWord  string
	resumeWord string
	stopWord   string
}

// NewMatcher validates the command word set: every word must be a single
// non-empty token, the three words must be pairwise distinct ignoring case,
// and no word may be a case-insensitive substring of another. Ambiguity is
// rejected here so it can never surface at match time.
func NewMatcher(pauseWord, resumeWord, stopWord string) (Matcher, error) {
	words := []struct {
		name  string
		value string
	}{
		{"pause word", strings.ToLower(strings.TrimSpace(pauseWord))},
		{"resume word", strings.ToLower(strings.TrimSpace(resumeWord))},
		{"stop word", strings.ToLower(strings.TrimSpace(stopWord))},
	}

	for _, w := range words {
		if w.value == "" {
			return Matcher{}, fmt.Errorf("%w: %s must not be empty", domain.ErrInvalidConfig, w.name)
		}
		if strings.ContainsFunc(w.value, unicode.IsSpace) {
			return Matcher{}, fmt.Errorf("%w: %s must be a single word, got %q", domain.ErrInvalidConfig, w.name, w.value)
		}
	}

	for i := 0; i < len(words); i++ {
		for j := i + 1; j < len(words); j++ {
			if words[i].value == words[j].value {
				return Matcher{}, fmt.Errorf("%w: %s and %s are both %q", domain.ErrInvalidConfig, words[i].name, words[j].name, words[i].value)
			}
			if strings.Contains(words[i].value, words[j].value) || strings.Contains(words[j].value, words[i].value) {
				return Matcher{}, fmt.Errorf("%w: %s %q and %s %q overlap", domain.ErrInvalidConfig, words[i].name, words[i].value, words[j].name, words[j].value)
			}
		}
	}

	return Matcher{
		pauseWord:  words[0].value,
		resumeWord: words[1].value,
		stopWord:   words[2].value,
	}, nil
}

// MatchPauseWord reports whether the last token of text is the pause word.
// On a match the residual is text with the pause word and any trailing
// punctuation and whitespace removed; everything before it, leading
// whitespace included, is returned untouched. On no match the input is
// returned unchanged.
func (m Matcher) MatchPauseWord(text string) (bool, string) {
	trimmed := strings.TrimRight(text, punctCutset+" \t\r\n")
	if trimmed == "" {
		return false, text
	}

	fields := strings.Fields(trimmed)
	last := fields[len(fields)-1]
	if !strings.EqualFold(last, m.pauseWord) {
		return false, text
	}

	residual := strings.TrimRight(trimmed[:len(trimmed)-len(last)], " \t\r\n")
	return true, residual
}

// MatchLeadingCommand inspects only the first three tokens of text. A resume
// word wins over a stop word; the resume residual is everything after the
// first occurrence, leading whitespace trimmed. Speech following a stop word
// is discarded since stopping is unconditional.
func (m Matcher) MatchLeadingCommand(text string) (domain.Command, string) {
	tokens := leadingTokens(text, leadingWindow)

	for _, tok := range tokens {
		if equalsWord(tok.text, m.resumeWord) {
			return domain.CommandResume, strings.TrimLeft(text[tok.end:], " \t\r\n")
		}
	}
	for _, tok := range tokens {
		if equalsWord(tok.text, m.stopWord) {
			return domain.CommandStop, ""
		}
	}
	return domain.CommandNone, text
}

func equalsWord(token, word string) bool {
	return strings.EqualFold(strings.Trim(token, punctCutset), word)
}

type token struct {
	text  string
	start int
	end   int
}

// leadingTokens splits on whitespace, keeping byte offsets so residuals can
// preserve the original spacing of the remainder.
func leadingTokens(s string, limit int) []token {
	tokens := make([]token, 0, limit)
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, token{text: s[start:i], start: start, end: i})
				start = -1
				if len(tokens) == limit {
					return tokens
				}
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 && len(tokens) < limit {
		tokens = append(tokens, token{text: s[start:], start: start, end: len(s)})
	}
	return tokens
}
