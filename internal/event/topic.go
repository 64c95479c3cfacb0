package event

import "strings"

// Topic represents a hierarchical event type using dot notation.
// Examples: "insert.left", "completion.session.started"
type Topic string

// Wildcard constants for pattern matching.
const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more segments.
	WildcardMulti = "**"

	// Separator is the character used to separate topic segments.
	Separator = "."
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the topic split by the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// IsWildcard returns true if the topic contains any wildcard characters.
func (t Topic) IsWildcard() bool {
	return strings.Contains(string(t), WildcardSingle)
}

// IsValid returns true if the topic is non-empty with no empty segments.
func (t Topic) IsValid() bool {
	s := string(t)
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, Separator) || strings.HasSuffix(s, Separator) {
		return false
	}
	return !strings.Contains(s, Separator+Separator)
}

// Matches returns true if this topic matches the given pattern.
// The pattern may contain wildcards:
//   - "*" matches exactly one segment
//   - "**" matches zero or more segments
func (t Topic) Matches(pattern Topic) bool {
	return matchSegments(t.Segments(), pattern.Segments())
}

// matchSegments performs recursive pattern matching on topic segments.
func matchSegments(topic, pattern []string) bool {
	ti, pi := 0, 0

	for pi < len(pattern) {
		if pattern[pi] == WildcardMulti {
			// ** matches zero or more segments
			for ti <= len(topic) {
				if matchSegments(topic[ti:], pattern[pi+1:]) {
					return true
				}
				ti++
			}
			return false
		}

		if ti >= len(topic) {
			return false
		}

		if pattern[pi] == WildcardSingle || pattern[pi] == topic[ti] {
			ti++
			pi++
		} else {
			return false
		}
	}

	return ti == len(topic)
}
