package internal

import (
	"regexp"
	"sort"
	"strings"
)

// AliasSuggestion proposes a config group for near-duplicate service
// names. Extraction often yields several spellings for one vendor
// ("netflix" from the domain, "netflix inc" from a subject line);
// these survive deduplication as separate records because the name is
// part of the identity key.
type AliasSuggestion struct {
	Name     string   // proposed canonical name
	Pattern  string   // regex covering all spellings
	Names    []string // distinct names covered, sorted
	Category Category
}

// SuggestAliasGroups scans deduplicated subscriptions for names in
// the same category that share a leading word and proposes one config
// group per cluster. Suggestions are sorted by cluster size, largest
// first.
func SuggestAliasGroups(subs []Subscription) []AliasSuggestion {
	type clusterKey struct {
		word     string
		category Category
	}

	clusters := make(map[clusterKey]map[string]bool)
	for _, sub := range subs {
		word := firstWord(sub.Name)
		if len(word) < 3 || word == "unknown" {
			continue
		}
		key := clusterKey{word: word, category: sub.Category}
		if clusters[key] == nil {
			clusters[key] = make(map[string]bool)
		}
		clusters[key][sub.Name] = true
	}

	var suggestions []AliasSuggestion
	for key, nameSet := range clusters {
		if len(nameSet) < 2 {
			continue
		}

		names := make([]string, 0, len(nameSet))
		for name := range nameSet {
			names = append(names, name)
		}
		sort.Strings(names)

		suggestions = append(suggestions, AliasSuggestion{
			Name:     key.word,
			Pattern:  "^" + regexp.QuoteMeta(key.word) + `\b`,
			Names:    names,
			Category: key.category,
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if len(suggestions[i].Names) != len(suggestions[j].Names) {
			return len(suggestions[i].Names) > len(suggestions[j].Names)
		}
		return suggestions[i].Name < suggestions[j].Name
	})

	return suggestions
}

// SuggestedGroups converts alias suggestions into config groups ready
// to be pasted into (or saved as) a config file.
func SuggestedGroups(suggestions []AliasSuggestion) []Group {
	groups := make([]Group, 0, len(suggestions))
	for _, s := range suggestions {
		groups = append(groups, Group{
			Name:     s.Name,
			Patterns: []string{s.Pattern},
		})
	}
	return groups
}

func firstWord(name string) string {
	word, _, _ := strings.Cut(name, " ")
	return word
}
