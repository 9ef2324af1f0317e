// Package extraction recovers the canonical shipment fields from normalized
// document text using anchored pattern search.
package extraction

import (
	"fmt"
	"regexp"
	"strings"
)

var bareDigits = regexp.MustCompile(`\b(\d{6,8})\b`)

type compiledPattern struct {
	Pattern
	anchored *regexp.Regexp
	bare     *regexp.Regexp
}

// Extractor applies an extraction table to document text. It holds only
// compiled, read-only state and is safe for concurrent use.
type Extractor struct {
	patterns []compiledPattern
	stop     *regexp.Regexp
}

// NewExtractor compiles an extraction table.
func NewExtractor(patterns []Pattern, stopLabels []string) (*Extractor, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("at least one extraction pattern is required")
	}

	labels := make([]string, 0, len(stopLabels)+len(patterns)*3)
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		if len(p.Anchors) == 0 {
			return nil, fmt.Errorf("pattern %s has no anchors", p.Field)
		}
		value, err := valueExpr(p)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(`(?:` + anchorAlternation(p.Anchors) + `)[\s:]+` + value)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %s: %w", p.Field, err)
		}
		cp := compiledPattern{Pattern: p, anchored: re}
		if p.Strategy == AnchoredWithBareFallback {
			cp.bare = bareDigits
		}
		compiled = append(compiled, cp)
		labels = append(labels, p.Anchors...)
	}
	labels = append(labels, stopLabels...)

	stop, err := regexp.Compile(`\b(?:` + anchorAlternation(labels) + `)\s*:`)
	if err != nil {
		return nil, fmt.Errorf("compile stop labels: %w", err)
	}

	return &Extractor{patterns: compiled, stop: stop}, nil
}

var defaultExtractor = mustDefault()

func mustDefault() *Extractor {
	e, err := NewExtractor(DefaultPatterns, StopLabels)
	if err != nil {
		panic(err)
	}
	return e
}

// Default returns the extractor built from DefaultPatterns.
func Default() *Extractor {
	return defaultExtractor
}

// Extract runs the default extraction table over text.
func Extract(text string) FieldSet {
	return defaultExtractor.Extract(text)
}

// Extract scans text for every field in the table. It never fails; fields
// without a match are absent from the result.
func (e *Extractor) Extract(text string) FieldSet {
	lower := strings.ToLower(text)
	values := make(map[Field]string, len(e.patterns))

	for _, p := range e.patterns {
		if v, ok := e.anchoredValue(p, lower); ok {
			values[p.Field] = v
			continue
		}
		if p.Strategy == AnchoredWithBareFallback && p.bare != nil {
			// Bare tokens are searched in the original-case text.
			if m := p.bare.FindStringSubmatch(text); m != nil {
				values[p.Field] = m[1]
			}
		}
	}

	return newFieldSet(values)
}

func (e *Extractor) anchoredValue(p compiledPattern, lower string) (string, bool) {
	m := p.anchored.FindStringSubmatch(lower)
	if m == nil {
		return "", false
	}
	v := m[1]
	if p.Shape == ShapeFreeText {
		v = e.cutAtNextLabel(v)
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}

// cutAtNextLabel truncates a free-text capture at the first label that
// starts after the beginning of the value.
func (e *Extractor) cutAtNextLabel(v string) string {
	for _, loc := range e.stop.FindAllStringIndex(v, -1) {
		if loc[0] > 0 {
			return v[:loc[0]]
		}
	}
	return v
}

func valueExpr(p Pattern) (string, error) {
	switch p.Shape {
	case ShapeDigits:
		return fmt.Sprintf(`(\d{%d,%d})`, p.MinLen, p.MaxLen), nil
	case ShapeNumber:
		return `(\d+(?:\.\d+)?)`, nil
	case ShapeFreeText:
		if p.MinLen <= 0 || p.MaxLen < p.MinLen {
			return "", fmt.Errorf("pattern %s has invalid length bounds %d..%d", p.Field, p.MinLen, p.MaxLen)
		}
		return fmt.Sprintf(`([^\n]{%d,%d})`, p.MinLen, p.MaxLen), nil
	default:
		return "", fmt.Errorf("pattern %s has unknown shape %d", p.Field, p.Shape)
	}
}

// anchorAlternation turns phrases into a regexp alternation that tolerates
// any run of whitespace between words.
func anchorAlternation(phrases []string) string {
	parts := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		words := strings.Fields(strings.ToLower(phrase))
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		parts = append(parts, strings.Join(words, `\s+`))
	}
	return strings.Join(parts, "|")
}
