// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:     "data only",
			data:     "hello",
			expected: "data: hello\n\n",
		},
		{
			name:      "named event",
			eventName: LocaleEvent,
			data:      "de",
			expected:  "event: locale\ndata: de\n\n",
		},
		{
			name:      "multiline data",
			eventName: "message",
			data:      "line1\nline2",
			expected:  "event: message\ndata: line1\ndata: line2\n\n",
		},
		{
			name:     "empty data",
			data:     "",
			expected: "data: \n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatEvent(tt.eventName, tt.data))
		})
	}
}
