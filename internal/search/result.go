package search

import "sort"

// FileResult holds every snippet found in one file. Only files with at least one
// match produce a result.
type FileResult struct {
	Path    string   `json:"path" toml:"path"`
	Matches []string `json:"matches" toml:"matches"`
}

// TotalMatches sums the snippets over results
func TotalMatches(results []FileResult) int {
	total := 0
	for _, r := range results {
		total += len(r.Matches)
	}
	return total
}

// SortResults orders results by path
func SortResults(results []FileResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
}
