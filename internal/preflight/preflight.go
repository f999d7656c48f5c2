package preflight

import (
	"errors"
	"strings"

	"strikeout/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes the checks applicable to a run from src to dest. An empty
// dest skips the destination checks (index-only runs never write there).
func RunAll(cfg *config.Config, src, dest string) []Result {
	var results []Result
	if cfg != nil && cfg.Paths.DataDir != "" {
		results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	}
	results = append(results, CheckSource(src))
	if dest == "" {
		return results
	}
	results = append(results, CheckDestination(dest))
	if cfg == nil || cfg.Link.CheckSameFilesystem {
		results = append(results, CheckSameFilesystem(src, dest))
	}
	return results
}

// FirstFailure converts the first failed result into an error.
func FirstFailure(results []Result) error {
	for _, r := range results {
		if !r.Passed {
			return errors.New(strings.ToLower(r.Name) + ": " + r.Detail)
		}
	}
	return nil
}
