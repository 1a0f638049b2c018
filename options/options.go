// Package options handles ecmagen.toml compile configuration.
package options

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

// FileName is the conventional configuration file name.
const FileName = "ecmagen.toml"

// Options controls optional behaviour of the bytecode generator.
type Options struct {
	// Debug emits scope descriptors for lexical environments and records
	// variable debug info.
	Debug bool `toml:"debug"`

	// RecordTypes enables the per-instruction type table and type
	// descriptor buffers.
	RecordTypes bool `toml:"record-types"`

	// WatchEvaluate routes global name access through the debugger's
	// getter/setter functions.
	WatchEvaluate bool `toml:"watch-evaluate"`

	// AssertLiveness makes the register pool check release discipline.
	AssertLiveness bool `toml:"assert-liveness"`

	Log Log `toml:"log"`
}

// Log configures the commonlog backend.
type Log struct {
	// Verbosity follows commonlog: 0 errors only, 1 adds warnings/notices,
	// 2 info, 3 and above debug.
	Verbosity int `toml:"verbosity"`
	// File is an optional log file path; empty logs to stderr.
	File string `toml:"file"`
}

// Default returns the options used when no configuration is supplied.
func Default() Options {
	return Options{
		Log: Log{Verbosity: 1},
	}
}

// Parse decodes TOML configuration on top of the defaults.
func Parse(data []byte) (Options, error) {
	o := Default()
	md, err := toml.Decode(string(data), &o)
	if err != nil {
		return Options{}, fmt.Errorf("parse options: %w", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Options{}, fmt.Errorf("parse options: unknown key %q", undec[0].String())
	}
	if o.Log.Verbosity < 0 {
		return Options{}, fmt.Errorf("parse options: negative log verbosity %d", o.Log.Verbosity)
	}
	return o, nil
}

// Load reads and parses a configuration file.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	o, err := Parse(data)
	if err != nil {
		return Options{}, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

// ConfigureLogging applies the log settings to the commonlog backend.
func (o Options) ConfigureLogging() {
	var path *string
	if o.Log.File != "" {
		file := o.Log.File
		path = &file
	}
	commonlog.Configure(o.Log.Verbosity, path)
}
