package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringIntMap stores a map[string]int as a JSON column (e.g. month buckets).
type StringIntMap map[string]int

// Value implements driver.Valuer.
func (m StringIntMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *StringIntMap) Scan(src interface{}) error {
	return scanJSON(src, m)
}

// UintIntMap stores a map[uint]int as a JSON column (per-temple counters).
type UintIntMap map[uint]int

func (m UintIntMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *UintIntMap) Scan(src interface{}) error {
	return scanJSON(src, m)
}

// UintSet stores a set of uints as a JSON array column (visited temples).
type UintSet map[uint]struct{}

// Add inserts id into the set, allocating lazily.
func (s *UintSet) Add(id uint) {
	if *s == nil {
		*s = UintSet{}
	}
	(*s)[id] = struct{}{}
}

// Contains reports membership.
func (s UintSet) Contains(id uint) bool {
	_, ok := s[id]
	return ok
}

func (s UintSet) Value() (driver.Value, error) {
	ids := make([]uint, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *UintSet) Scan(src interface{}) error {
	var ids []uint
	if err := scanJSON(src, &ids); err != nil {
		return err
	}
	set := make(UintSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	*s = set
	return nil
}

// MarshalJSON renders the set as a JSON array for API responses. Order is
// unspecified.
func (s UintSet) MarshalJSON() ([]byte, error) {
	ids := make([]uint, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return json.Marshal(ids)
}

// UnmarshalJSON accepts a JSON array of ids.
func (s *UintSet) UnmarshalJSON(b []byte) error {
	var ids []uint
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	set := make(UintSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	*s = set
	return nil
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
}
