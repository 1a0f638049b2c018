package options

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	o := Default()
	if o.Debug || o.RecordTypes || o.WatchEvaluate || o.AssertLiveness {
		t.Errorf("unexpected defaults: %+v", o)
	}
	if o.Log.Verbosity != 1 {
		t.Errorf("default verbosity = %d", o.Log.Verbosity)
	}
}

func TestParse(t *testing.T) {
	src := `
debug = true
record-types = true
assert-liveness = true

[log]
verbosity = 3
`
	o, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !o.Debug || !o.RecordTypes || !o.AssertLiveness || o.WatchEvaluate {
		t.Errorf("flags = %+v", o)
	}
	if o.Log.Verbosity != 3 {
		t.Errorf("verbosity = %d", o.Log.Verbosity)
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	o, err := Parse([]byte("debug = true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if o.Log.Verbosity != 1 {
		t.Errorf("verbosity = %d, want default 1", o.Log.Verbosity)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", "debug = ", "parse options"},
		{"unknown key", "optimize = true\n", "unknown key"},
		{"negative verbosity", "[log]\nverbosity = -1\n", "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("watch-evaluate = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	o, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !o.WatchEvaluate {
		t.Error("watch-evaluate not set")
	}
	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}
