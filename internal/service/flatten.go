package service

import (
	"fmt"
	"strconv"
)

// Flatten recursively unwraps arbitrarily nested slices into a single flat
// slice. Order is preserved and duplicates pass through untouched; payment
// records accumulated id lists per checkout, so the enrolled-classes view has
// to cope with any nesting depth.
func Flatten(values []interface{}) []interface{} {
	flat := make([]interface{}, 0, len(values))
	for _, v := range values {
		if nested, ok := v.([]interface{}); ok {
			flat = append(flat, Flatten(nested)...)
			continue
		}
		flat = append(flat, v)
	}
	return flat
}

// FlattenIDs flattens nested id lists and renders every leaf as a string.
// JSON numbers arrive as float64 and are formatted without a fraction.
func FlattenIDs(values []interface{}) []string {
	flat := Flatten(values)
	ids := make([]string, 0, len(flat))
	for _, v := range flat {
		switch leaf := v.(type) {
		case string:
			ids = append(ids, leaf)
		case float64:
			ids = append(ids, strconv.FormatFloat(leaf, 'f', -1, 64))
		default:
			ids = append(ids, fmt.Sprint(leaf))
		}
	}
	return ids
}
