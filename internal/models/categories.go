package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// CategoryLabels accepts the "categories" request field either as a single
// string or as an array of strings.
type CategoryLabels []string

func (c *CategoryLabels) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CategoryLabels{s}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("categories must be a string or an array of strings: %w", err)
	}
	*c = list
	return nil
}

// Canonical splits the labels into the legacy single category and the tags
// that follow it. Blank labels are dropped, and a label already present in
// tags (case-insensitively) is not appended twice.
func (c CategoryLabels) Canonical(tags []string) (string, []string) {
	out := cleanLabels(tags)

	var legacy string
	for _, label := range c {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if legacy == "" {
			legacy = label
			continue
		}
		if !containsFold(out, label) {
			out = append(out, label)
		}
	}
	return legacy, out
}

func cleanLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
