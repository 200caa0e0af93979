package utils

import (
	"encoding/json"
	"fmt"
)

// ParseJSON parses a JSON string into a map
func ParseJSON(jsonStr string) (map[string]interface{}, error) {
	var result map[string]interface{}
	err := json.Unmarshal([]byte(jsonStr), &result)
	if err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}
	return result, nil
}

// GetNestedMap walks keys through nested maps and returns the map at the end
func GetNestedMap(data map[string]interface{}, keys ...string) (map[string]interface{}, error) {
	current := data
	for _, key := range keys {
		nestedMap, ok := current[key].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("key %s is not a map", key)
		}
		current = nestedMap
	}
	return current, nil
}

// GetNestedString extracts a string from a nested map
func GetNestedString(data map[string]interface{}, keys ...string) (string, error) {
	if len(keys) == 0 {
		return "", fmt.Errorf("invalid keys")
	}

	parent, err := GetNestedMap(data, keys[:len(keys)-1]...)
	if err != nil {
		return "", err
	}

	last := keys[len(keys)-1]
	if str, ok := parent[last].(string); ok {
		return str, nil
	}
	return "", fmt.Errorf("key %s is not a string", last)
}

// FirstNestedMap returns the first value of m that is itself a map.
// Price list terms are keyed by SKU, so callers only know there is one entry.
func FirstNestedMap(m map[string]interface{}) (map[string]interface{}, error) {
	for _, v := range m {
		if nested, ok := v.(map[string]interface{}); ok {
			return nested, nil
		}
	}
	return nil, fmt.Errorf("map has no nested map value")
}
