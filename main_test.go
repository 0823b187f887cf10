package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterSensitiveHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    map[string]string
	}{
		{
			name:    "redacts credentials",
			headers: map[string]string{"authorization": "Bearer x", "cookie": "a=b", "x-api-key": "k"},
			want:    map[string]string{"authorization": "[REDACTED]", "cookie": "[REDACTED]", "x-api-key": "[REDACTED]"},
		},
		{
			name:    "keeps other headers",
			headers: map[string]string{"content-type": "application/json", "x-request-id": "abc"},
			want:    map[string]string{"content-type": "application/json", "x-request-id": "abc"},
		},
		{
			name:    "empty",
			headers: map[string]string{},
			want:    map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filterSensitiveHeaders(tt.headers))
		})
	}
}
