package model

import (
	"encoding/json"
	"fmt"
)

// JSONMap represents a generic JSON object, used for partial document updates.
type JSONMap map[string]interface{}

// ToJSONMap flattens a document into its JSON key/value form.
func ToJSONMap(v interface{}) (JSONMap, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	var m JSONMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return m, nil
}

// MergeInto applies partial fields onto a document by round-tripping through JSON.
func (m JSONMap) MergeInto(dst interface{}) error {
	current, err := ToJSONMap(dst)
	if err != nil {
		return err
	}
	for k, v := range m {
		current[k] = v
	}
	data, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("failed to marshal merged document: %w", err)
	}
	return json.Unmarshal(data, dst)
}
