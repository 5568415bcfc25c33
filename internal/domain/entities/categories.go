package entities

import (
	"bytes"
	"encoding/json"
)

// KnownCategories is the fixed vocabulary offered by the category views.
// Free-form labels are accepted as well.
var KnownCategories = []string{"life", "work", "study", "creative", "health", "social", "product"}

// IsKnownCategory reports whether name is one of KnownCategories.
func IsKnownCategory(name string) bool {
	for _, known := range KnownCategories {
		if known == name {
			return true
		}
	}
	return false
}

// Categories is the ordered, multi-valued label list of a task.
type Categories []string

// UnmarshalJSON accepts a native array, null, or the legacy encoding where
// the array was serialized into a JSON string. A malformed legacy string
// decodes to nil instead of failing the whole document.
func (c *Categories) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = nil
		return nil
	}

	if trimmed[0] == '"' {
		*c = ParseLegacyCategories(trimmed)
		return nil
	}

	var list []string
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return err
	}
	*c = list
	return nil
}

// ParseLegacyCategories decodes a JSON string literal holding a serialized
// array, e.g. "[\"work\"]". Anything malformed yields nil.
func ParseLegacyCategories(raw []byte) Categories {
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil
	}
	if encoded == "" {
		return nil
	}

	var list []string
	if err := json.Unmarshal([]byte(encoded), &list); err != nil {
		return nil
	}
	return list
}

// Has reports whether the list contains name.
func (c Categories) Has(name string) bool {
	for _, v := range c {
		if v == name {
			return true
		}
	}
	return false
}

// Empty reports whether the task is uncategorized.
func (c Categories) Empty() bool {
	return len(c) == 0
}
