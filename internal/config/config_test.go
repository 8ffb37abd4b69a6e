package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	git "github.com/go-git/go-git/v5"
)

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
}

func TestLoad_Formats(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("slash-separated fixtures")
	}
	d := t.TempDir()
	files := map[string]string{
		"rc.config.json": `{"alias": {"@": "./out", "@gen/": "gen/", "@abs": "/abs/dir"}, "compose": {"mode": "aggregate"}}`,
		"rc.config.cue": `
// generated outputs
alias: {
	"@":     "./out"
	"@gen/": "gen/"
	"@abs":  "/abs/dir"
}
compose: mode: "aggregate"
`,
		"rc.config.yaml": `
alias:
  "@": ./out
  "@gen/": gen/
  "@abs": /abs/dir
compose:
  mode: aggregate
`,
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(d, name)
			writeFile(t, p, content)
			c, err := Load(p)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if c.Path != p {
				t.Fatalf("unexpected path: %s", c.Path)
			}
			want := map[string]string{
				"@":     filepath.Join(d, "out"),
				"@gen/": filepath.Join(d, "gen") + "/",
				"@abs":  "/abs/dir",
			}
			if len(c.Alias) != len(want) {
				t.Fatalf("unexpected alias count: %v", c.Alias)
			}
			for k, v := range want {
				if c.Alias[k] != v {
					t.Fatalf("alias %q: want %q got %q", k, v, c.Alias[k])
				}
			}
			if c.Compose != ComposeAggregate {
				t.Fatalf("unexpected compose mode: %s", c.Compose)
			}
			if got := c.AliasTable().Resolve("@gen/x.go", "/base"); got != filepath.Join(d, "gen", "x.go") {
				t.Fatalf("unexpected resolution: %s", got)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "rc.config.json")
	writeFile(t, p, `{}`)
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Compose != ComposeIndependent || c.ConfigVersion != CurrentConfigVersion || len(c.Alias) != 0 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestLoad_Errors(t *testing.T) {
	d := t.TempDir()
	cases := []struct {
		name, file, content, want string
	}{
		{"bad mode", "a.json", `{"compose": {"mode": "sometimes"}}`, `invalid compose.mode: "sometimes"`},
		{"alias not struct", "b.json", `{"alias": "x"}`, "invalid type for field: alias"},
		{"alias not strings", "c.json", `{"alias": {"@": 1}}`, "invalid value for alias"},
		{"version type", "d.cue", `configVersion: 1`, "invalid type for field: configVersion"},
		{"syntax", "e.json", `{"alias": `, "invalid config"},
		{"yaml syntax", "f.yaml", "alias: [", "invalid config"},
		{"extension", "g.toml", "", "unsupported config format"},
		{"empty prefix", "h.yaml", "alias:\n  \"\": out\n", "invalid alias: empty prefix"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := filepath.Join(d, tc.file)
			writeFile(t, p, tc.content)
			_, err := Load(p)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("want error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLocate_WorkingDirFirst(t *testing.T) {
	d := t.TempDir()
	writeFile(t, filepath.Join(d, "rc.config.yaml"), "alias: {}\n")
	writeFile(t, filepath.Join(d, "rc.config.cue"), "alias: {}\n")
	p, err := Locate(d)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if p != filepath.Join(d, "rc.config.cue") {
		t.Fatalf("unexpected config: %s", p)
	}
}

func TestLocate_GitWorktreeRoot(t *testing.T) {
	root := t.TempDir()
	if _, err := git.PlainInit(root, false); err != nil {
		t.Fatalf("git init: %v", err)
	}
	writeFile(t, filepath.Join(root, "rc.config.json"), `{"alias": {"@": "out"}}`)
	sub := filepath.Join(root, "scripts", "gen")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	c, err := LoadOrDefault(sub, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Path != filepath.Join(root, "rc.config.json") {
		t.Fatalf("unexpected config path: %s", c.Path)
	}
	if c.Alias["@"] != filepath.Join(root, "out") {
		t.Fatalf("alias not anchored at config dir: %s", c.Alias["@"])
	}
}

func TestLoadOrDefault_NoConfig(t *testing.T) {
	c, err := LoadOrDefault(t.TempDir(), "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Path != "" || c.AliasTable().Len() != 0 || c.Compose != ComposeIndependent {
		t.Fatalf("expected defaults, got %+v", c)
	}
}

func TestLoadOrDefault_Explicit(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "custom.yml")
	writeFile(t, p, "compose:\n  mode: aggregate\n")
	c, err := LoadOrDefault(t.TempDir(), p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Compose != ComposeAggregate {
		t.Fatalf("explicit config ignored: %+v", c)
	}
}
