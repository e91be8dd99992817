package postgres

import "encoding/json"

// Deref helpers for partial inputs: nil pointers mean "not submitted" and
// fall back to the zero value on insert.

func text(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func flag(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}

// jsonArg turns an optional raw JSON document into an insertable argument;
// empty documents become SQL NULL.
func jsonArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

// intsArg guards array columns against nil slices, which should insert as
// empty arrays rather than NULL.
func intsArg(v []int64) []int64 {
	if v == nil {
		return []int64{}
	}
	return v
}
