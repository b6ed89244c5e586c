package command

import (
	"sort"
	"strings"
)

// Tier ranks how a query matched an entry. Lower tiers sort first.
type Tier int

const (
	TierLabelPrefix Tier = iota
	TierLabel
	TierKeyword
	TierDescription
	TierNone
)

// Result is a matched entry.
type Result struct {
	Entry Entry
	Tier  Tier
}

// Filter matches query case-insensitively as a substring of each entry's
// label, keywords, type tag and description. An empty query returns every
// entry. Results are ordered by tier and keep catalog order within a tier;
// limit <= 0 means no limit.
func Filter(entries []Entry, query string, limit int) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	results := make([]Result, 0, len(entries))
	for _, e := range entries {
		tier := match(query, e)
		if tier == TierNone {
			continue
		}
		results = append(results, Result{Entry: e, Tier: tier})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Tier < results[j].Tier
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func match(query string, e Entry) Tier {
	if query == "" {
		return TierLabelPrefix
	}
	label := strings.ToLower(e.Label)
	if strings.HasPrefix(label, query) {
		return TierLabelPrefix
	}
	if strings.Contains(label, query) {
		return TierLabel
	}
	if strings.Contains(string(e.Type), query) {
		return TierKeyword
	}
	for _, k := range e.Keywords {
		if strings.Contains(strings.ToLower(k), query) {
			return TierKeyword
		}
	}
	if strings.Contains(strings.ToLower(e.Description), query) {
		return TierDescription
	}
	return TierNone
}
