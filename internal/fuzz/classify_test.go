package fuzz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoprobe/evoprobe/internal/amf"
)

func TestClassify(t *testing.T) {
	valid, err := amf.Encode("castle.getCastleInfo", amf.Object(map[string]amf.Value{
		"cityId": amf.Int(7),
	}))
	require.NoError(t, err)

	tests := []struct {
		name     string
		resp     []byte
		expected Classification
	}{
		{
			name:     "empty response",
			resp:     nil,
			expected: ClassNoResponse,
		},
		{
			name:     "zero length response",
			resp:     []byte{},
			expected: ClassNoResponse,
		},
		{
			name:     "plain error text",
			resp:     []byte("Internal Server Error"),
			expected: ClassError,
		},
		{
			name:     "invalid action text",
			resp:     []byte("Invalid action name"),
			expected: ClassInvalidAction,
		},
		{
			// The word "error" is absent; "unauthorized" alone must win.
			name:     "unauthorized text",
			resp:     []byte("Unauthorized access"),
			expected: ClassUnauthorized,
		},
		{
			name:     "unauthorized beats invalid",
			resp:     []byte("invalid: unauthorized session"),
			expected: ClassUnauthorized,
		},
		{
			name:     "case insensitive markers",
			resp:     []byte("ERROR 500"),
			expected: ClassError,
		},
		{
			name:     "valid envelope",
			resp:     valid,
			expected: ClassValidDecodable,
		},
		{
			name:     "truncated envelope",
			resp:     valid[:len(valid)-3],
			expected: ClassUnknownFormat,
		},
		{
			name:     "binary garbage",
			resp:     []byte{0xDE, 0xAD, 0xBE, 0xEF},
			expected: ClassUnknownFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.resp))
		})
	}
}
