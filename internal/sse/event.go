// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import (
	"strings"
)

const (
	// Heartbeat is an SSE comment that keeps the connection alive.
	Heartbeat = ": heartbeat\n\n"

	// LocaleEvent carries the code of a locale another tab switched to.
	LocaleEvent = "locale"
)

// FormatEvent formats data as an SSE event with an optional event name.
// Every line of data gets its own "data:" field.
func FormatEvent(eventName, data string) string {
	var sb strings.Builder
	if eventName != "" {
		sb.WriteString("event: " + eventName + "\n")
	}
	for line := range strings.SplitSeq(data, "\n") {
		sb.WriteString("data: " + line + "\n")
	}
	sb.WriteString("\n")
	return sb.String()
}
