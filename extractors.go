package crashwatch

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultPrefix is the label the crash page puts in front of the payout.
const DefaultPrefix = "Crashed @"

// Extractor derives the value to record from an element's trimmed text.
//
// It returns false when the text does not carry a value yet, for example
// while a round is still running. Such reads are neither recorded nor
// counted as failures.
//
// # Panic Safety
//
// Extractors are called within a panic recovery boundary. A panicking
// extractor is logged with a correlation ID and the read is counted as an
// error, so a misbehaving extractor cannot stop the monitor.
type Extractor func(text string) (value string, ok bool)

// PrefixExtractor returns an [Extractor] that accepts text containing prefix.
// Every occurrence of prefix is removed and the remainder trimmed.
//
// Example:
//
//	// "Crashed @ 2.31x" -> "2.31x"
//	extractor := crashwatch.PrefixExtractor("Crashed @")
func PrefixExtractor(prefix string) Extractor {
	return func(text string) (string, bool) {
		if !strings.Contains(text, prefix) {
			return "", false
		}
		value := strings.TrimSpace(strings.ReplaceAll(text, prefix, ""))
		return value, value != ""
	}
}

// RegexExtractor returns an [Extractor] that matches the text against a
// regular expression pattern.
//
// If the pattern has a capture group, the first group is the value;
// otherwise the whole match is. Text that does not match yields no value.
//
// Returns an error if the pattern is invalid.
//
// Example:
//
//	// "Crashed @ 2.31x" -> "2.31"
//	extractor, err := crashwatch.RegexExtractor(`(\d+(?:\.\d+)?)x`)
func RegexExtractor(pattern string) (Extractor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	return func(text string) (string, bool) {
		matches := re.FindStringSubmatch(text)
		if matches == nil {
			return "", false
		}
		value := matches[0]
		if len(matches) > 1 {
			value = matches[1]
		}
		value = strings.TrimSpace(value)
		return value, value != ""
	}, nil
}

// MustRegexExtractor is like [RegexExtractor] but panics if the pattern
// is invalid.
//
// Use this for compile-time constant patterns where you want to fail fast
// on invalid regex. For runtime patterns, use [RegexExtractor] instead.
func MustRegexExtractor(pattern string) Extractor {
	extractor, err := RegexExtractor(pattern)
	if err != nil {
		panic("crashwatch: invalid regex pattern: " + err.Error())
	}
	return extractor
}

// TextExtractor records the whole trimmed text whenever it is non-empty.
var TextExtractor Extractor = func(text string) (string, bool) {
	value := strings.TrimSpace(text)
	return value, value != ""
}

// FirstMatch returns an [Extractor] that tries multiple extractors in
// order, returning the first value found.
//
// Example:
//
//	extractor := crashwatch.FirstMatch(
//	    crashwatch.PrefixExtractor("Crashed @"),
//	    crashwatch.PrefixExtractor("Busted @"),
//	)
func FirstMatch(extractors ...Extractor) Extractor {
	return func(text string) (string, bool) {
		for _, extractor := range extractors {
			if value, ok := extractor(text); ok {
				return value, true
			}
		}
		return "", false
	}
}

// DefaultExtractor is the [Extractor] used when a [Target] has none.
// It is [PrefixExtractor] with [DefaultPrefix].
var DefaultExtractor = PrefixExtractor(DefaultPrefix)

// ParseExtractor builds an [Extractor] from its textual form, as used in
// configuration files:
//
//   - "prefix:<text>": [PrefixExtractor]
//   - "regex:<pattern>": [RegexExtractor]
//   - "text": [TextExtractor]
//
// An empty string selects [DefaultExtractor].
func ParseExtractor(s string) (Extractor, error) {
	if s == "" {
		return DefaultExtractor, nil
	}
	if s == "text" {
		return TextExtractor, nil
	}

	kind, arg, found := strings.Cut(s, ":")
	if !found {
		return nil, fmt.Errorf("invalid extractor %q (expected prefix:<text>, regex:<pattern> or text)", s)
	}
	switch kind {
	case "prefix":
		if strings.TrimSpace(arg) == "" {
			return nil, fmt.Errorf("invalid extractor %q: prefix cannot be empty", s)
		}
		return PrefixExtractor(arg), nil
	case "regex":
		extractor, err := RegexExtractor(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid extractor %q: %w", s, err)
		}
		return extractor, nil
	default:
		return nil, fmt.Errorf("unknown extractor kind %q (expected prefix, regex or text)", kind)
	}
}
