package behavior

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/autopop/internal/script"
)

// Spec is the configuration-facing form of a Behavior. Patterns and the
// optional condition are plain strings so specs can live in TOML; Compile
// turns them into their executable forms.
type Spec struct {
	Command  string `toml:"command"`
	Pattern  string `toml:"pattern"`
	Excluded string `toml:"excluded"`
	Repeat   bool   `toml:"repeat"`
	When     string `toml:"when"`
}

var (
	// ErrEmptyCommand indicates a spec without a completion command.
	ErrEmptyCommand = errors.New("behavior command is empty")
	// ErrEmptyPattern indicates a spec without a trigger pattern.
	ErrEmptyPattern = errors.New("behavior pattern is empty")
)

// Compile validates the spec and builds the executable Behavior. It fails
// fast: a bad regex or condition script is reported here, never at trigger
// time.
func (s Spec) Compile() (Behavior, error) {
	if strings.TrimSpace(s.Command) == "" {
		return Behavior{}, ErrEmptyCommand
	}
	if s.Pattern == "" {
		return Behavior{}, ErrEmptyPattern
	}

	pattern, err := regexp.Compile(s.Pattern)
	if err != nil {
		return Behavior{}, fmt.Errorf("pattern %q: %w", s.Pattern, err)
	}

	var excluded *regexp.Regexp
	if s.Excluded != "" {
		excluded, err = regexp.Compile(s.Excluded)
		if err != nil {
			return Behavior{}, fmt.Errorf("excluded %q: %w", s.Excluded, err)
		}
	}

	var when *script.Condition
	if strings.TrimSpace(s.When) != "" {
		when, err = script.Compile(s.When)
		if err != nil {
			return Behavior{}, fmt.Errorf("when condition: %w", err)
		}
	}

	return Behavior{
		Command:  s.Command,
		Pattern:  pattern,
		Excluded: excluded,
		Repeat:   s.Repeat,
		When:     when,
	}, nil
}
