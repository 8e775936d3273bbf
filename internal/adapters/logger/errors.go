package logger

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// messager describes an error that can report its own message without the chain,
// as zerr.Error does.
type messager interface {
	Message() string
}

// metadataer describes an error carrying structured key-value metadata.
type metadataer interface {
	Metadata() map[string]any
}

// ErrorEntry is one level of an error chain prepared for display.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// collectErrorEntries walks the error chain, one entry per level.
// Joined errors contribute each branch in order. zerr levels with an empty
// message fold their metadata into the next level.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	var pending map[string]any

	for current := err; current != nil; {
		if joined, ok := current.(interface{ Unwrap() []error }); ok {
			for _, branch := range joined.Unwrap() {
				entries = append(entries, collectErrorEntries(branch)...)
			}
			break
		}

		m, ok := current.(messager)
		if !ok {
			entries = append(entries, ErrorEntry{Message: current.Error(), Metadata: pending})
			break
		}

		var meta map[string]any
		if md, ok := current.(metadataer); ok {
			meta = md.Metadata()
		}

		if m.Message() == "" {
			pending = mergeMetadata(pending, meta)
			current = errors.Unwrap(current)
			continue
		}

		entries = append(entries, ErrorEntry{Message: m.Message(), Metadata: mergeMetadata(pending, meta)})
		pending = nil
		current = errors.Unwrap(current)
	}

	return entries
}

func mergeMetadata(a, b map[string]any) map[string]any {
	if len(a) == 0 {
		return b
	}
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// formatErrorEntries renders entries as a main error followed by its causes.
func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")

		var head, indent string
		if i == 0 {
			head, indent = "Error: ", "       "
		} else {
			if i == 1 {
				lines = append(lines, "", "  Caused by:")
			}
			head, indent = "    → ", "      "
		}

		lines = append(lines, head+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, indent+line)
		}

		keys := make([]string, 0, len(entry.Metadata))
		for k := range entry.Metadata {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s%s: %v", indent, k, entry.Metadata[k]))
		}
	}

	return strings.Join(lines, "\n")
}
