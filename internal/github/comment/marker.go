package comment

import (
	"fmt"
	"strings"
)

// markerPrefix and markerTemplate are matched literally against bodies
// written by earlier runs, including comments left by the cathy npm module.
// Changing them orphans every comment already on a thread.
const (
	markerPrefix   = "<!-- https://github.com/levibostian/cathy comment. id:"
	markerTemplate = markerPrefix + "%s -->"
)

// DefaultTag is the tag used when the caller supplies none.
const DefaultTag = "default"

// MessageHeader returns the invisible marker for tag.
// The tag is embedded verbatim, no escaping is applied.
func MessageHeader(tag string) string {
	return fmt.Sprintf(markerTemplate, tag)
}

// Header renders the markers of a normalized identity, one per line.
func Header(id Identity) string {
	var b strings.Builder
	for _, tag := range id {
		b.WriteString(MessageHeader(tag))
		b.WriteByte('\n')
	}
	return b.String()
}

// hasAllMarkers reports whether body carries the marker of every tag.
func hasAllMarkers(body string, id Identity) bool {
	if len(id) == 0 {
		return false
	}
	for _, tag := range id {
		if !strings.Contains(body, MessageHeader(tag)) {
			return false
		}
	}
	return true
}
