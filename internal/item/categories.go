package item

import "sort"

// Category is one entry of the grocery category catalog. Icon names
// follow the font-awesome regular set used by the dashboard widget.
type Category struct {
	ID   string `json:"category"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Categories is the static grocery category catalog. The order here is
// the canonical display order for categorized views.
var Categories = []Category{
	{ID: "produce", Name: "Fruit & vegetables", Icon: "carrot"},
	{ID: "bakery", Name: "Bread & bakery", Icon: "bread-slice"},
	{ID: "dairy", Name: "Dairy & eggs", Icon: "cheese"},
	{ID: "meat", Name: "Meat & poultry", Icon: "drumstick"},
	{ID: "fish", Name: "Fish & seafood", Icon: "fish"},
	{ID: "frozen", Name: "Frozen", Icon: "snowflake"},
	{ID: "pantry", Name: "Pantry", Icon: "jar"},
	{ID: "snacks", Name: "Snacks & sweets", Icon: "cookie"},
	{ID: "drinks", Name: "Drinks", Icon: "mug-hot"},
	{ID: "household", Name: "Household", Icon: "spray-can"},
	{ID: "personal_care", Name: "Personal care", Icon: "pump-soap"},
	{ID: "baby", Name: "Baby", Icon: "baby-carriage"},
	{ID: "pets", Name: "Pets", Icon: "paw"},
}

// CategoryRank returns the catalog position of a category id, or the
// catalog length for unknown ids so they sort after known ones.
func CategoryRank(id string) int {
	for i, c := range Categories {
		if c.ID == id {
			return i
		}
	}
	return len(Categories)
}

// CategoryGroup is one bucket of a categorized item view.
type CategoryGroup struct {
	Category string `json:"category"`
	Items    []Item `json:"items"`
}

// Categorize groups items by category, known categories in catalog order
// and the uncategorized bucket last. Items inside a group keep the order
// they were given in.
func Categorize(items []Item) []CategoryGroup {
	index := map[string]int{}
	var groups []CategoryGroup
	for _, it := range items {
		key := it.Category
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, CategoryGroup{Category: key})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Category, groups[j].Category
		if (a == "") != (b == "") {
			return b == ""
		}
		return CategoryRank(a) < CategoryRank(b)
	})
	return groups
}
