package domain

import "strings"

// Tag is a keyword matched against message text. Tag names are stored
// normalized (lowercase, trimmed) and apply globally across channels.
type Tag struct {
	Name string `json:"name"`
}

// Normalize returns the canonical form of a tag name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
