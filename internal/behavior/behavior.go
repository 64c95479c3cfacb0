// Package behavior defines completion strategy descriptors and the
// per-file-type registry the trigger engine resolves them from.
//
// A Behavior pairs an opaque completion command (interpreted by the host)
// with the conditions under which it should be attempted: a pattern the
// text before the cursor must match, an optional excluded pattern that must
// not match, and an optional Lua condition for anything regexes cannot
// express.
package behavior

import (
	"regexp"

	"github.com/dshills/autopop/internal/script"
)

// Behavior describes one completion strategy and when it applies.
type Behavior struct {
	// Command is the opaque completion command the host executes.
	Command string

	// Pattern must match the text before the cursor.
	Pattern *regexp.Regexp

	// Excluded, when non-nil, must not match the text before the cursor.
	Excluded *regexp.Regexp

	// Repeat re-attempts this behavior after the cursor moves while its
	// menu is showing. Used for chained completions such as path segments.
	Repeat bool

	// When, when non-nil, is an additional scripted eligibility condition.
	When *script.Condition
}

// Matches reports whether the text before the cursor satisfies the pattern
// pair: Pattern matches and Excluded (if set) does not.
func (b *Behavior) Matches(text string) bool {
	if !b.Pattern.MatchString(text) {
		return false
	}
	if b.Excluded != nil && b.Excluded.MatchString(text) {
		return false
	}
	return true
}

// Eligible reports whether the behavior applies to the given text and file
// type. The error is non-nil only when the When condition fails at runtime;
// callers decide whether to surface or log it, but the behavior is never
// eligible in that case.
func (b *Behavior) Eligible(text, filetype string) (bool, error) {
	if !b.Matches(text) {
		return false, nil
	}
	if b.When == nil {
		return true, nil
	}
	return b.When.Eval(text, filetype)
}
