package behavior

import (
	"errors"
	"strings"
	"testing"
)

func TestSpecCompile(t *testing.T) {
	spec := Spec{
		Command:  "omni",
		Pattern:  `\w\w$`,
		Excluded: `^$`,
		Repeat:   true,
		When:     `return filetype == "go"`,
	}

	b, err := spec.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	defer b.When.Close()

	if b.Command != "omni" {
		t.Errorf("Command = %q, want %q", b.Command, "omni")
	}
	if b.Pattern == nil || b.Excluded == nil || b.When == nil {
		t.Errorf("Compile() left nil fields: pattern=%v excluded=%v when=%v",
			b.Pattern, b.Excluded, b.When)
	}
	if !b.Repeat {
		t.Error("Repeat = false, want true")
	}
}

func TestSpecCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr error
		wantCtx string
	}{
		{
			name:    "empty command",
			spec:    Spec{Pattern: `\w$`},
			wantErr: ErrEmptyCommand,
		},
		{
			name:    "whitespace command",
			spec:    Spec{Command: "  ", Pattern: `\w$`},
			wantErr: ErrEmptyCommand,
		},
		{
			name:    "empty pattern",
			spec:    Spec{Command: "keyword"},
			wantErr: ErrEmptyPattern,
		},
		{
			name:    "bad pattern",
			spec:    Spec{Command: "keyword", Pattern: `[`},
			wantCtx: "pattern",
		},
		{
			name:    "bad excluded",
			spec:    Spec{Command: "keyword", Pattern: `\w$`, Excluded: `(`},
			wantCtx: "excluded",
		},
		{
			name:    "bad condition",
			spec:    Spec{Command: "keyword", Pattern: `\w$`, When: `return ==`},
			wantCtx: "when condition",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.spec.Compile()
			if err == nil {
				t.Fatal("Compile() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Compile() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantCtx != "" && !strings.Contains(err.Error(), tt.wantCtx) {
				t.Errorf("Compile() error = %v, want context %q", err, tt.wantCtx)
			}
		})
	}
}

func TestBehaviorMatches(t *testing.T) {
	spec := Spec{Command: "keyword", Pattern: `\w\w$`, Excluded: `[0-9]$`}
	b, err := spec.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	tests := []struct {
		text string
		want bool
	}{
		{"ab", true},
		{"foo_b", true},
		{"a", false},
		{"a.", false},
		{"", false},
		{"ab1", false}, // excluded wins over pattern
	}

	for _, tt := range tests {
		if got := b.Matches(tt.text); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestBehaviorEligibleCondition(t *testing.T) {
	spec := Spec{
		Command: "omni",
		Pattern: `\w\w$`,
		When:    `return filetype == "go" and text ~= "skip"`,
	}
	b, err := spec.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	defer b.When.Close()

	tests := []struct {
		text     string
		filetype string
		want     bool
	}{
		{"ab", "go", true},
		{"ab", "python", false},
		{"skip", "go", false},
		{"a", "go", false}, // pattern filters before the condition runs
	}

	for _, tt := range tests {
		got, err := b.Eligible(tt.text, tt.filetype)
		if err != nil {
			t.Fatalf("Eligible(%q, %q) error = %v", tt.text, tt.filetype, err)
		}
		if got != tt.want {
			t.Errorf("Eligible(%q, %q) = %v, want %v", tt.text, tt.filetype, got, tt.want)
		}
	}
}

func TestBehaviorEligibleConditionError(t *testing.T) {
	spec := Spec{Command: "omni", Pattern: `\w\w$`, When: `return missing.field`}
	b, err := spec.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	defer b.When.Close()

	got, err := b.Eligible("ab", "go")
	if err == nil {
		t.Fatal("Eligible() error = nil, want runtime error")
	}
	if got {
		t.Error("Eligible() = true with failing condition, want false")
	}
}

func TestNewRegistryRequiresWildcard(t *testing.T) {
	_, err := NewRegistry(map[string][]Spec{
		"go": {{Command: "keyword", Pattern: `\w\w$`}},
	})
	if !errors.Is(err, ErrMissingFallback) {
		t.Errorf("NewRegistry() error = %v, want %v", err, ErrMissingFallback)
	}
}

func TestNewRegistryCompileErrorContext(t *testing.T) {
	_, err := NewRegistry(map[string][]Spec{
		Wildcard: {{Command: "keyword", Pattern: `\w\w$`}},
		"go": {
			{Command: "keyword", Pattern: `\w\w$`},
			{Command: "omni", Pattern: `[`},
		},
	})
	if err == nil {
		t.Fatal("NewRegistry() error = nil, want compile error")
	}
	if !strings.Contains(err.Error(), "behaviors[go][1]") {
		t.Errorf("NewRegistry() error = %v, want file type and index context", err)
	}
}

func TestRegistryResolve(t *testing.T) {
	reg, err := NewRegistry(map[string][]Spec{
		Wildcard: {{Command: "keyword", Pattern: `\w\w$`}},
		"go": {
			{Command: "file", Pattern: `/`},
			{Command: "omni", Pattern: `\.$`},
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	if got := commands(reg.Resolve("go")); !equalStrings(got, []string{"file", "omni"}) {
		t.Errorf(`Resolve("go") commands = %v, want [file omni]`, got)
	}
	if got := commands(reg.Resolve("markdown")); !equalStrings(got, []string{"keyword"}) {
		t.Errorf(`Resolve("markdown") commands = %v, want [keyword]`, got)
	}
	if got := commands(reg.Resolve("")); !equalStrings(got, []string{"keyword"}) {
		t.Errorf(`Resolve("") commands = %v, want [keyword]`, got)
	}
}

func TestRegistryResolveReturnsCopy(t *testing.T) {
	reg, err := NewRegistry(map[string][]Spec{
		Wildcard: {
			{Command: "file", Pattern: `/`},
			{Command: "keyword", Pattern: `\w\w$`},
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	list := reg.Resolve("go")
	list[0], list[1] = list[1], list[0]

	if got := commands(reg.Resolve("go")); !equalStrings(got, []string{"file", "keyword"}) {
		t.Errorf("Resolve() after caller mutation = %v, want [file keyword]", got)
	}
}

func TestRegistryFileTypes(t *testing.T) {
	reg, err := NewRegistry(map[string][]Spec{
		Wildcard: {{Command: "keyword", Pattern: `\w\w$`}},
		"python": {{Command: "omni", Pattern: `\.$`}},
		"go":     {{Command: "omni", Pattern: `\.$`}},
	})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	want := []string{Wildcard, "go", "python"}
	if got := reg.FileTypes(); !equalStrings(got, want) {
		t.Errorf("FileTypes() = %v, want %v", got, want)
	}
}

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	defer reg.Close()

	if got := commands(reg.Resolve("text")); !equalStrings(got, []string{"file", "keyword"}) {
		t.Errorf("wildcard commands = %v, want [file keyword]", got)
	}
	for _, filetype := range []string{"go", "python", "html", "css"} {
		got := commands(reg.Resolve(filetype))
		if !equalStrings(got, []string{"file", "keyword", "omni"}) {
			t.Errorf("%s commands = %v, want [file keyword omni]", filetype, got)
		}
	}
}

func TestDefaultFileBehavior(t *testing.T) {
	reg := DefaultRegistry()
	defer reg.Close()
	file := reg.Resolve("text")[0]

	tests := []struct {
		text string
		want bool
	}{
		{"src/ma", true},
		{"./con", true},
		{"lib/", true},
		{"ab", false},           // no path separator
		{"http://ho", false},    // doubled separator
		{"src/**/pk", false},    // glob star before separator
		{"héllo/wor", false},    // non-ASCII path
	}

	for _, tt := range tests {
		if got := file.Matches(tt.text); got != tt.want {
			t.Errorf("file.Matches(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestDefaultOmniBehavior(t *testing.T) {
	reg := DefaultRegistry()
	defer reg.Close()
	omni := reg.Resolve("go")[2]

	tests := []struct {
		text string
		want bool
	}{
		{"pkg.", true},
		{"pkg.Fi", true},
		{"..", false},
		{"x .", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := omni.Matches(tt.text); got != tt.want {
			t.Errorf("omni.Matches(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func commands(list []Behavior) []string {
	out := make([]string, len(list))
	for i, b := range list {
		out[i] = b.Command
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
