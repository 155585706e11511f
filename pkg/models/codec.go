package models

import "encoding/json"

// ToRecord flattens a typed entity into the open field bag the document
// store works with. Field names follow the struct's json tags, so queries
// and partial updates use the same names the API exposes.
func ToRecord(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var rec map[string]any
	if err := json.Unmarshal(b, &rec); err != nil {
		return map[string]any{}
	}
	return rec
}

// FromRecord decodes a field bag back into a typed entity. Unknown fields
// are dropped; absent fields keep their zero values.
func FromRecord(rec map[string]any, out any) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
