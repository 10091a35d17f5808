package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kr/pretty"
)

func TestParseOverridesDefaults(t *testing.T) {
	opts, err := Parse([]byte(`
loop_unroll_enabled = false
loop_unroll_limit = 8
log_level = "silent"
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := Default()
	want.LoopUnrollEnabled = false
	want.LoopUnrollLimit = 8
	want.LogLevel = "silent"

	if diff := pretty.Diff(opts, want); len(diff) > 0 {
		t.Errorf("unexpected options:\n%s", strings.Join(diff, "\n"))
	}
}

func TestParseEmptyIsDefault(t *testing.T) {
	opts, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if diff := pretty.Diff(opts, Default()); len(diff) > 0 {
		t.Errorf("empty document should give defaults:\n%s", strings.Join(diff, "\n"))
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "unroll_everything = true"},
		{"wrong type", `loop_unroll_enabled = "yes"`},
		{"negative limit", "loop_unroll_limit = -1"},
		{"zero emulation bound", "max_emulated_iterations = 0"},
		{"bad log level", `log_level = "loud"`},
		{"malformed toml", "loop_unroll_limit = = 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Fatalf("expected %q to be rejected", tt.doc)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xronos.toml")
	if err := os.WriteFile(path, []byte("conservative_unknown_loops = false\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if opts.ConservativeUnknownLoops {
		t.Errorf("expected conservative_unknown_loops to be disabled")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}
