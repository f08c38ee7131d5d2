package device

// Color is one entry of the look color catalog.
type Color struct {
	Hex   string `json:"hex"`
	Label string `json:"label"`
}

// Icon is one entry of the look icon catalog.
type Icon struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Colors returns the color catalog offered by the pairing view.
func Colors() []Color {
	return []Color{
		{Hex: "#ef4444", Label: "Red"},
		{Hex: "#f97316", Label: "Orange"},
		{Hex: "#f59e0b", Label: "Amber"},
		{Hex: "#eab308", Label: "Yellow"},
		{Hex: "#84cc16", Label: "Lime"},
		{Hex: "#22c55e", Label: "Green"},
		{Hex: "#10b981", Label: "Emerald"},
		{Hex: "#14b8a6", Label: "Teal"},
		{Hex: "#06b6d4", Label: "Cyan"},
		{Hex: "#0ea5e9", Label: "Sky"},
		{Hex: "#3b82f6", Label: "Blue"},
		{Hex: "#6366f1", Label: "Indigo"},
		{Hex: "#8b5cf6", Label: "Violet"},
		{Hex: "#a855f7", Label: "Purple"},
		{Hex: "#d946ef", Label: "Fuchsia"},
		{Hex: "#ec4899", Label: "Pink"},
		{Hex: "#f43f5e", Label: "Rose"},
	}
}

// Icons returns the icon catalog offered by the pairing view.
func Icons() []Icon {
	return []Icon{
		{ID: "list", Name: "List"},
		{ID: "list-check", Name: "Checklist"},
		{ID: "cart-shopping", Name: "Shopping cart"},
		{ID: "basket-shopping", Name: "Shopping basket"},
		{ID: "clipboard-list", Name: "Clipboard"},
		{ID: "note-sticky", Name: "Sticky note"},
		{ID: "calendar-check", Name: "Calendar"},
		{ID: "house", Name: "Home"},
		{ID: "briefcase", Name: "Work"},
		{ID: "gift", Name: "Gifts"},
		{ID: "utensils", Name: "Cooking"},
		{ID: "plane", Name: "Travel"},
	}
}
