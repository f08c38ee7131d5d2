package item

import (
	"fmt"
	"strings"
	"time"
)

// Filter selects which items a textual rendering includes.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterOpen    Filter = "open"
	FilterChecked Filter = "checked"
)

// ParseFilter maps a flow-card argument to a Filter, defaulting to all.
func ParseFilter(s string) Filter {
	switch Filter(s) {
	case FilterOpen, FilterChecked:
		return Filter(s)
	default:
		return FilterAll
	}
}

func (f Filter) match(it Item) bool {
	switch f {
	case FilterOpen:
		return !it.Checked
	case FilterChecked:
		// Notes have no checked state and never show up here.
		return it.Completable() && it.Checked
	default:
		return true
	}
}

// Contents renders one line per matching item in plain text. The cutoff
// resolves date-only deadlines so the rendered instant matches when the
// deadline actually fires.
func Contents(items []Item, filter Filter, cutoff Cutoff, loc *time.Location) string {
	return renderLines(items, filter, cutoff, loc, false)
}

// ContentsMarkdown renders one line per matching item as a markdown list.
func ContentsMarkdown(items []Item, filter Filter, cutoff Cutoff, loc *time.Location) string {
	return renderLines(items, filter, cutoff, loc, true)
}

func renderLines(items []Item, filter Filter, cutoff Cutoff, loc *time.Location, markdown bool) string {
	var b strings.Builder
	for _, it := range items {
		if !filter.match(it) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(renderLine(it, cutoff, loc, markdown))
	}
	return b.String()
}

func renderLine(it Item, cutoff Cutoff, loc *time.Location, markdown bool) string {
	if it.Type == TypeNote {
		if markdown {
			return "- " + it.Content
		}
		return "• " + it.Content
	}

	box := "[ ]"
	if it.Checked {
		box = "[x]"
	}
	if markdown {
		box = "- " + box
	}

	var b strings.Builder
	b.WriteString(box)
	b.WriteByte(' ')
	if it.Type == TypeProduct && it.Quantity > 1 {
		fmt.Fprintf(&b, "%dx ", it.Quantity)
	}
	b.WriteString(it.Content)
	if it.Type == TypeTask {
		if it.Person != nil && it.Person.Name != "" {
			b.WriteString(" @" + it.Person.Name)
		}
		if due, ok := it.DueAt(cutoff, loc); ok {
			b.WriteString(" (due " + due.Format("2006-01-02 15:04") + ")")
		}
	}
	return b.String()
}
