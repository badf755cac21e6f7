// internal/catalog/normalize.go
package catalog

import (
	"bytes"
	"strconv"

	json "github.com/goccy/go-json"
)

// Item is the canonical catalog entry served to clients, whatever shape the
// backend returned it in.
type Item struct {
	ID          string  `json:"id"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
}

// The backend serves the catalog in one of two shapes:
// fixed-position rows [category, subcategory, name, price, imageUrl], or
// objects with flexible key aliases (name/title, imageUrl/image).
type payloadShape int

const (
	shapeUnknown payloadShape = iota
	shapeRows
	shapeObjects
)

// Normalize converts a raw catalog payload (a JSON array) into canonical
// items. Rows with an empty name are dropped silently; an unrecognized
// shape fails closed to an empty list, never an error.
func Normalize(raw json.RawMessage) []Item {
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return []Item{}
	}
	if len(rows) == 0 {
		return []Item{}
	}

	items := make([]Item, 0, len(rows))
	switch detectShape(rows[0]) {
	case shapeRows:
		for i, row := range rows {
			if item, ok := fromRow(i, row); ok {
				items = append(items, item)
			}
		}
	case shapeObjects:
		for i, row := range rows {
			if item, ok := fromObject(i, row); ok {
				items = append(items, item)
			}
		}
	}
	return items
}

func detectShape(first json.RawMessage) payloadShape {
	trimmed := bytes.TrimLeft(first, " \t\r\n")
	if len(trimmed) == 0 {
		return shapeUnknown
	}
	switch trimmed[0] {
	case '[':
		return shapeRows
	case '{':
		return shapeObjects
	default:
		return shapeUnknown
	}
}

func fromRow(index int, raw json.RawMessage) (Item, bool) {
	var cols []interface{}
	if err := json.Unmarshal(raw, &cols); err != nil {
		return Item{}, false
	}
	col := func(i int) interface{} {
		if i < len(cols) {
			return cols[i]
		}
		return nil
	}

	item := Item{
		Category:    asString(col(0)),
		Subcategory: asString(col(1)),
		Name:        asString(col(2)),
		Price:       asPrice(col(3)),
		ImageURL:    asString(col(4)),
	}
	if item.Name == "" {
		return Item{}, false
	}
	item.ID = itemID(item.Category, item.Subcategory, item.Name, index)
	return item, true
}

func fromObject(index int, raw json.RawMessage) (Item, bool) {
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return Item{}, false
	}

	item := Item{
		ID:          asString(m["id"]),
		Category:    asString(m["category"]),
		Subcategory: asString(m["subcategory"]),
		Name:        firstNonEmpty(asString(m["name"]), asString(m["title"])),
		Price:       asPrice(m["price"]),
		ImageURL:    firstNonEmpty(asString(m["imageUrl"]), asString(m["image"])),
	}
	if item.Name == "" {
		return Item{}, false
	}
	if item.ID == "" {
		item.ID = itemID(item.Category, item.Subcategory, item.Name, index)
	}
	return item, true
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

// asPrice coerces the way Number(...) would: numbers pass through, numeric
// strings parse, everything else (and negatives) becomes 0.
func asPrice(v interface{}) float64 {
	var price float64
	switch p := v.(type) {
	case float64:
		price = p
	case string:
		parsed, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0
		}
		price = parsed
	default:
		return 0
	}
	if price < 0 {
		return 0
	}
	return price
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
