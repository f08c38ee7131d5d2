package flow

import (
	"sort"
	"strings"

	"listrigo/internal/item"
)

// AutocompleteResult is one candidate offered for a flow-card argument.
type AutocompleteResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// AutocompletePersons filters the known persons by a case-insensitive
// substring query and sorts candidates by name.
func AutocompletePersons(persons []item.Person, query string) []AutocompleteResult {
	normalized := strings.ToLower(strings.TrimSpace(query))

	results := make([]AutocompleteResult, 0, len(persons))
	for _, p := range persons {
		if normalized != "" && !strings.Contains(strings.ToLower(p.Name), normalized) {
			continue
		}
		name := p.Name
		if name == "" {
			name = p.ID
		}
		results = append(results, AutocompleteResult{ID: p.ID, Name: name, Image: p.Image})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results
}

// AutocompleteCategories offers the grocery category catalog, filtered
// by a case-insensitive substring query and sorted by name.
func AutocompleteCategories(query string) []AutocompleteResult {
	normalized := strings.ToLower(strings.TrimSpace(query))

	results := make([]AutocompleteResult, 0, len(item.Categories))
	for _, c := range item.Categories {
		if normalized != "" && !strings.Contains(strings.ToLower(c.Name), normalized) {
			continue
		}
		results = append(results, AutocompleteResult{
			ID:    c.ID,
			Name:  c.Name,
			Image: "https://bmcdn.nl/assets/font-awesome/regular-full/" + c.Icon + ".svg",
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results
}

// ListEntry is the identity slice of a device offered to the list
// picker.
type ListEntry struct {
	ID   string
	Name string
}

// AutocompleteLists filters devices by a case-insensitive substring
// query on their name and sorts candidates by name.
func AutocompleteLists(lists []ListEntry, query string) []AutocompleteResult {
	normalized := strings.ToLower(strings.TrimSpace(query))

	results := make([]AutocompleteResult, 0, len(lists))
	for _, l := range lists {
		if normalized != "" && !strings.Contains(strings.ToLower(l.Name), normalized) {
			continue
		}
		results = append(results, AutocompleteResult{ID: l.ID, Name: l.Name})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results
}
