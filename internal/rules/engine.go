// Package rules applies deterministic text substitutions to finalized
// transcripts before they are handed to the downstream consumer.
package rules

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Two line formats are supported:
//
//	spoken form => written form        literal, case-insensitive
//	s/pattern/replacement/flags        sed-style regex (flags: i g m s)
type rule interface {
	apply(input string) (output string, changed bool)
}

// Engine holds compiled substitution rules. Rules are re-applied until the
// text is stable or the iteration limit is reached, so chained substitutions
// settle.
type Engine struct {
	rules     []rule
	loopLimit int
}

// NewEngine compiles rules from an optional rules file plus inline rule
// lines (typically from configuration). A missing file is not an error; a
// malformed rule is.
func NewEngine(path string, inline []string, loopLimit int) (*Engine, error) {
	if loopLimit <= 0 {
		loopLimit = 30
	}

	var lines []string
	if strings.TrimSpace(path) != "" {
		contents, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read rules file %q: %w", path, err)
		}
		if err == nil {
			lines = strings.Split(string(contents), "\n")
		}
	}
	lines = append(lines, inline...)

	compiled := make([]rule, 0, len(lines))
	for index, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		r, err := compileRule(line)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", index+1, err)
		}
		compiled = append(compiled, r)
	}

	return &Engine{rules: compiled, loopLimit: loopLimit}, nil
}

// Apply transforms text deterministically. With no rules loaded it is the
// identity.
func (e *Engine) Apply(text string) (string, error) {
	result := text
	for i := 0; i < e.loopLimit; i++ {
		changed := false
		for _, r := range e.rules {
			next, ruleChanged := r.apply(result)
			if ruleChanged {
				result = next
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return result, nil
}

// Len reports how many rules are loaded.
func (e *Engine) Len() int {
	return len(e.rules)
}

func compileRule(line string) (rule, error) {
	if isRegexRule(line) {
		return compileRegexRule(line)
	}
	if strings.Contains(line, "=>") {
		return compileLiteralRule(line)
	}
	return nil, errors.New("unsupported rule format")
}

func isRegexRule(line string) bool {
	if len(line) < 2 || line[0] != 's' {
		return false
	}
	delim := line[1]
	return !(delim >= 'a' && delim <= 'z') &&
		!(delim >= 'A' && delim <= 'Z') &&
		!(delim >= '0' && delim <= '9') &&
		delim != ' ' && delim != '\t'
}

type literalRule struct {
	re          *regexp.Regexp
	replacement string
}

func compileLiteralRule(line string) (rule, error) {
	parts := strings.SplitN(line, "=>", 2)
	from := strings.TrimSpace(parts[0])
	to := strings.TrimSpace(parts[1])
	if from == "" {
		return nil, errors.New("literal rule source cannot be empty")
	}

	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(from))
	if err != nil {
		return nil, fmt.Errorf("invalid literal source: %w", err)
	}
	return literalRule{re: re, replacement: to}, nil
}

func (r literalRule) apply(input string) (string, bool) {
	output := r.re.ReplaceAllString(input, r.replacement)
	return output, output != input
}

type regexRule struct {
	re          *regexp.Regexp
	replacement string
	global      bool
}

func compileRegexRule(line string) (rule, error) {
	delim := line[1]

	pattern, pos, err := readDelimited(line, 2, delim)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}
	replacement, pos, err := readDelimited(line, pos, delim)
	if err != nil {
		return nil, fmt.Errorf("invalid regex replacement: %w", err)
	}

	global := false
	inlineFlags := "i"
	for _, flag := range strings.TrimSpace(line[pos:]) {
		switch flag {
		case 'i':
			// Already the default.
		case 'g':
			global = true
		case 'm', 's':
			inlineFlags += string(flag)
		default:
			return nil, fmt.Errorf("unsupported regex flag %q", flag)
		}
	}

	re, err := regexp.Compile("(?" + inlineFlags + ")" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}
	return regexRule{re: re, replacement: replacement, global: global}, nil
}

func (r regexRule) apply(input string) (string, bool) {
	if r.global {
		output := r.re.ReplaceAllString(input, r.replacement)
		return output, output != input
	}

	loc := r.re.FindStringIndex(input)
	if loc == nil {
		return input, false
	}
	segment := input[loc[0]:loc[1]]
	output := input[:loc[0]] + r.re.ReplaceAllString(segment, r.replacement) + input[loc[1]:]
	return output, output != input
}

// readDelimited scans until the next unescaped delimiter and returns the
// segment plus the position just past it.
func readDelimited(line string, start int, delim byte) (string, int, error) {
	if start >= len(line) {
		return "", 0, errors.New("unexpected end of expression")
	}

	var builder strings.Builder
	escaped := false
	for i := start; i < len(line); i++ {
		ch := line[i]
		if escaped {
			builder.WriteByte(ch)
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			builder.WriteByte(ch)
			continue
		}
		if ch == delim {
			return builder.String(), i + 1, nil
		}
		builder.WriteByte(ch)
	}
	return "", 0, errors.New("unterminated expression")
}
