package utils

import "strings"

// SplitTags splits comma separated tags. Segments are not trimmed and empty
// segments are kept, so " a, b" yields [" a", " b"].
func SplitTags(raw string) []string {
	return strings.Split(raw, ",")
}

// AnyEmpty reports whether any of the values is the empty string
func AnyEmpty(values ...string) bool {
	for _, v := range values {
		if v == "" {
			return true
		}
	}
	return false
}
