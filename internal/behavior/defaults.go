package behavior

// Shipped behavior specs. File-path completion repeats so each new path
// segment re-triggers it; the excluded pattern keeps it away from glob
// stars, doubled separators, and non-ASCII paths the host completes
// unreliably.
var (
	fileSpec = Spec{
		Command:  "file",
		Pattern:  `[-0-9A-Za-z._~+/\\][/\\][-0-9A-Za-z._~+]*$`,
		Excluded: `[*/\\][/\\]|[^[:ascii:]]`,
		Repeat:   true,
	}

	keywordSpec = Spec{
		Command: "keyword",
		Pattern: `\w\w$`,
	}

	dotOmniSpec = Spec{
		Command: "omni",
		Pattern: `[^.[:space:]]\.\w*$`,
	}

	htmlOmniSpec = Spec{
		Command: "omni",
		Pattern: `(</?|<[^>]*[[:space:]])[-\w]*$`,
	}

	cssOmniSpec = Spec{
		Command: "omni",
		Pattern: `[:@;,{!][ \t]*[-\w]*$`,
	}
)

// DefaultSpecs returns the shipped behavior table. Every file type gets
// file-path and keyword completion; languages with a useful omni source get
// it appended as the last resort. The returned map is fresh on every call
// so callers can overlay their own entries.
func DefaultSpecs() map[string][]Spec {
	return map[string][]Spec{
		Wildcard: {fileSpec, keywordSpec},
		"go":     {fileSpec, keywordSpec, dotOmniSpec},
		"python": {fileSpec, keywordSpec, dotOmniSpec},
		"html":   {fileSpec, keywordSpec, htmlOmniSpec},
		"css":    {fileSpec, keywordSpec, cssOmniSpec},
	}
}

// DefaultRegistry compiles DefaultSpecs. The shipped table is covered by
// tests, so compilation cannot fail at runtime.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultSpecs())
	if err != nil {
		panic("behavior: default table failed to compile: " + err.Error())
	}
	return r
}
