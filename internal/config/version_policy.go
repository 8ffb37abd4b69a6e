// Package config loads the generation settings: the path alias table and
// how composed results are recorded.
package config

import (
	"slices"
	"strings"
)

const CurrentConfigVersion = "1"

var SupportedConfigVersions = []string{CurrentConfigVersion}

func IsSupportedConfigVersion(v string) bool {
	return slices.Contains(SupportedConfigVersions, v)
}

func SupportedConfigVersionsCSV() string {
	return strings.Join(SupportedConfigVersions, ", ")
}
