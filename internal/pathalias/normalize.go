package pathalias

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const verbatimPrefix = `\\?\`

// Normalize simplifies p using only its text: "." segments are dropped and
// ".." removes the previous segment. A ".." with nothing left to remove, or
// directly under the root, is dropped rather than reported.
func Normalize(p string) string {
	p = stripVerbatim(p)
	if p == "" {
		return ""
	}
	vol := filepath.VolumeName(p)
	rest := p[len(vol):]
	rooted := rest != "" && os.IsPathSeparator(rest[0])

	segs := make([]string, 0, 8)
	for _, s := range strings.FieldsFunc(rest, isSeparator) {
		switch s {
		case ".":
		case "..":
			if len(segs) > 0 {
				segs = segs[:len(segs)-1]
			}
		default:
			segs = append(segs, s)
		}
	}

	sep := string(os.PathSeparator)
	out := strings.Join(segs, sep)
	if rooted {
		out = sep + out
	}
	out = vol + out
	if out == "" {
		return "."
	}
	return out
}

func isSeparator(r rune) bool {
	return r < 0x80 && os.IsPathSeparator(uint8(r))
}

func stripVerbatim(p string) string {
	if runtime.GOOS == "windows" && strings.HasPrefix(p, verbatimPrefix) {
		return p[len(verbatimPrefix):]
	}
	return p
}
