package config

import (
	"errors"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
)

// FileNames are the config names searched, in order.
var FileNames = []string{"rc.config.json", "rc.config.cue", "rc.config.yaml", "rc.config.yml"}

// Locate returns the first config file found in dir, then at the root of
// the git worktree enclosing dir. It returns "" when there is none.
func Locate(dir string) (string, error) {
	if p := firstExisting(dir); p != "" {
		return p, nil
	}
	root, err := worktreeRoot(dir)
	if err != nil {
		return "", err
	}
	if root == "" || sameDir(root, dir) {
		return "", nil
	}
	return firstExisting(root), nil
}

// LoadOrDefault loads explicit when set, otherwise the located config, and
// falls back to Default when no file exists.
func LoadOrDefault(dir, explicit string) (Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	p, err := Locate(dir)
	if err != nil {
		return Config{}, err
	}
	if p == "" {
		return Default(), nil
	}
	return Load(p)
}

func firstExisting(dir string) string {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// worktreeRoot finds the enclosing git worktree. Bare repositories and
// directories outside any repository yield "".
func worktreeRoot(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", nil
		}
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return "", nil
		}
		return "", err
	}
	return wt.Filesystem.Root(), nil
}

func sameDir(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}
