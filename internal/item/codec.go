package item

import (
	"encoding/json"
	"fmt"
	"time"
)

// record is the persisted and wire shape of one item. Older revisions
// stored the checked flag under "completed"; the decoder accepts both.
type record struct {
	ID        string  `json:"id"`
	Type      Type    `json:"type"`
	Created   string  `json:"created"`
	Checked   *bool   `json:"checked,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Content   string  `json:"content"`
	Category  string  `json:"category,omitempty"`
	Quantity  *int    `json:"quantity,omitempty"`
	DueDate   string  `json:"dueDate,omitempty"`
	DueTime   string  `json:"dueTime,omitempty"`
	Person    *Person `json:"person,omitempty"`
}

// MarshalJSON encodes only the fields that belong to the item's variant.
func (it Item) MarshalJSON() ([]byte, error) {
	rec := record{
		ID:      it.ID,
		Type:    it.Type,
		Created: it.Created.Format(time.RFC3339),
		Content: it.Content,
	}
	switch it.Type {
	case TypeProduct:
		checked := it.Checked
		quantity := it.Quantity
		rec.Checked = &checked
		rec.Category = it.Category
		rec.Quantity = &quantity
	case TypeTask:
		checked := it.Checked
		rec.Checked = &checked
		rec.DueDate = it.DueDate
		rec.DueTime = it.DueTime
		rec.Person = it.Person
	}
	return json.Marshal(rec)
}

// UnmarshalJSON decodes any historically-persisted item shape.
func (it *Item) UnmarshalJSON(data []byte) error {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	if !rec.Type.Valid() {
		return fmt.Errorf("unknown item type %q", rec.Type)
	}

	created, err := time.Parse(time.RFC3339, rec.Created)
	if err != nil {
		// Tolerate fractional seconds written by older revisions.
		created, err = time.Parse(time.RFC3339Nano, rec.Created)
		if err != nil {
			return fmt.Errorf("item %s: bad created timestamp %q: %w", rec.ID, rec.Created, err)
		}
	}

	checked := false
	if rec.Checked != nil {
		checked = *rec.Checked
	} else if rec.Completed != nil {
		// Legacy field name, pre-rename.
		checked = *rec.Completed
	}

	*it = Item{
		ID:      rec.ID,
		Type:    rec.Type,
		Created: created,
		Content: rec.Content,
	}
	switch rec.Type {
	case TypeProduct:
		it.Checked = checked
		it.Category = rec.Category
		it.Quantity = 1
		if rec.Quantity != nil {
			it.Quantity = *rec.Quantity
		}
	case TypeTask:
		it.Checked = checked
		it.DueDate = rec.DueDate
		it.DueTime = rec.DueTime
		it.Person = rec.Person
	}
	return nil
}

// Encode serializes a collection for persistence.
func Encode(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(items)
}

// Decode deserializes a persisted collection. Records that no longer
// decode (unknown type, corrupt timestamp) are dropped rather than
// failing the whole load; the dropped count lets the caller log it.
func Decode(data []byte) (items []Item, dropped int, err error) {
	if len(data) == 0 {
		return nil, 0, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, 0, fmt.Errorf("decode items: %w", err)
	}
	items = make([]Item, 0, len(raws))
	for _, raw := range raws {
		var it Item
		if err := json.Unmarshal(raw, &it); err != nil {
			dropped++
			continue
		}
		items = append(items, it)
	}
	return items, dropped, nil
}
