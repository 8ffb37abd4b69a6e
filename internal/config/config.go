package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/flarebyte/jsforge/internal/pathalias"
)

// ComposeMode selects how composed results with several pairs are recorded.
type ComposeMode string

const (
	// ComposeIndependent attempts every pair and records each one.
	ComposeIndependent ComposeMode = "independent"
	// ComposeAggregate stops at the first failed pair and records one
	// outcome per composed call.
	ComposeAggregate ComposeMode = "aggregate"
)

// Config is the validated generation configuration.
type Config struct {
	// Path is the absolute config file path, empty when defaults are used.
	Path          string
	ConfigVersion string
	// Alias maps logical prefixes to absolute, normalized directories.
	Alias   map[string]string
	Compose ComposeMode
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Alias:         map[string]string{},
		Compose:       ComposeIndependent,
	}
}

// AliasTable returns the alias mapping as a lookup table.
func (c Config) AliasTable() pathalias.Table {
	return pathalias.NewTable(c.Alias)
}

// raw is the decoded file before validation.
type raw struct {
	ConfigVersion *string           `yaml:"configVersion"`
	Alias         map[string]string `yaml:"alias"`
	Compose       struct {
		Mode string `yaml:"mode"`
	} `yaml:"compose"`
}

// Load reads and validates the config file at path. JSON and CUE files are
// compiled with CUE; YAML files are decoded with yaml.v3.
func Load(path string) (Config, error) {
	var (
		r   raw
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".cue":
		r, err = decodeCUE(path)
	case ".yaml", ".yml":
		r, err = decodeYAML(path)
	default:
		return Config{}, errors.New("unsupported config format: expected .json, .cue, .yaml or .yml")
	}
	if err != nil {
		return Config{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve config path: %w", err)
	}
	return validate(abs, r)
}

func validate(abs string, r raw) (Config, error) {
	c := Default()
	c.Path = abs
	if r.ConfigVersion != nil {
		if !IsSupportedConfigVersion(*r.ConfigVersion) {
			return Config{}, fmt.Errorf("unsupported configVersion: %q (supported: %s)", *r.ConfigVersion, SupportedConfigVersionsCSV())
		}
		c.ConfigVersion = *r.ConfigVersion
	}
	switch ComposeMode(r.Compose.Mode) {
	case "":
	case ComposeIndependent, ComposeAggregate:
		c.Compose = ComposeMode(r.Compose.Mode)
	default:
		return Config{}, fmt.Errorf("invalid compose.mode: %q (expected independent or aggregate)", r.Compose.Mode)
	}
	dir := filepath.Dir(abs)
	for k, v := range r.Alias {
		if k == "" {
			return Config{}, errors.New("invalid alias: empty prefix")
		}
		c.Alias[k] = resolveAliasDir(dir, v)
	}
	return c, nil
}

func decodeCUE(path string) (raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return raw{}, fmt.Errorf("failed to read config: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return raw{}, fmt.Errorf("invalid config: %v", err)
	}
	var r raw
	cv := v.LookupPath(cue.ParsePath("configVersion"))
	if cv.Exists() {
		if cv.Kind() != cue.StringKind {
			return raw{}, errors.New("invalid type for field: configVersion (expected string)")
		}
		var s string
		if err := cv.Decode(&s); err != nil {
			return raw{}, fmt.Errorf("invalid value for configVersion: %v", err)
		}
		r.ConfigVersion = &s
	}
	av := v.LookupPath(cue.ParsePath("alias"))
	if av.Exists() {
		if av.Kind() != cue.StructKind {
			return raw{}, errors.New("invalid type for field: alias (expected struct of strings)")
		}
		if err := av.Decode(&r.Alias); err != nil {
			return raw{}, fmt.Errorf("invalid value for alias: %v", err)
		}
	}
	mv := v.LookupPath(cue.ParsePath("compose.mode"))
	if mv.Exists() {
		if mv.Kind() != cue.StringKind {
			return raw{}, errors.New("invalid type for field: compose.mode (expected string)")
		}
		if err := mv.Decode(&r.Compose.Mode); err != nil {
			return raw{}, fmt.Errorf("invalid value for compose.mode: %v", err)
		}
	}
	return r, nil
}

func decodeYAML(path string) (raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return raw{}, fmt.Errorf("failed to read config: %w", err)
	}
	var r raw
	if err := yaml.Unmarshal(data, &r); err != nil {
		return raw{}, fmt.Errorf("invalid config: %v", err)
	}
	return r, nil
}

// resolveAliasDir anchors a relative alias target at the config directory.
// A trailing separator is kept so "@/" can map to "out/".
func resolveAliasDir(dir, v string) string {
	p := v
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	p = pathalias.Normalize(p)
	if hasTrailingSeparator(v) && !hasTrailingSeparator(p) {
		p += string(os.PathSeparator)
	}
	return p
}

func hasTrailingSeparator(p string) bool {
	return p != "" && os.IsPathSeparator(p[len(p)-1])
}
