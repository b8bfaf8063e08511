// Package jsonmap provides a map type stored as a JSON column.
package jsonmap

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Map is a string-keyed JSON object persisted as a TEXT/JSON column.
type Map map[string]any

func (m Map) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *Map) Scan(src any) error {
	if src == nil {
		*m = Map{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("jsonmap: unsupported source type %T", src)
	}
	if len(b) == 0 {
		*m = Map{}
		return nil
	}
	return json.Unmarshal(b, m)
}

func (Map) GormDataType() string { return "json" }

// Equal reports whether both maps marshal to the same JSON object.
func Equal(a, b Map) bool {
	if len(a) != len(b) {
		return false
	}
	ab, err1 := json.Marshal(a)
	bb, err2 := json.Marshal(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return string(ab) == string(bb)
}
