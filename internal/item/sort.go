package item

import (
	"sort"
	"time"
)

// Less is the canonical item ordering: unchecked before checked (notes
// count as unchecked), then items with a deadline before items without,
// earlier deadlines first, and finally creation time ascending.
func Less(a, b Item, loc *time.Location) bool {
	if a.Checked != b.Checked {
		return !a.Checked
	}
	aDue, aOK := a.DueAt(EndOfDay, loc)
	bDue, bOK := b.DueAt(EndOfDay, loc)
	if aOK != bOK {
		return aOK
	}
	if aOK && !aDue.Equal(bDue) {
		return aDue.Before(bDue)
	}
	return a.Created.Before(b.Created)
}

// Sorted returns a sorted copy; the input order is preserved for ties.
func Sorted(items []Item, loc *time.Location) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return Less(out[i], out[j], loc)
	})
	return out
}
