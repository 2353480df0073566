package fuzz

import (
	"strings"

	"github.com/evoprobe/evoprobe/internal/amf"
)

// Classification labels one raw fuzz response.
type Classification string

const (
	ClassNoResponse     Classification = "NoResponse"
	ClassError          Classification = "Error"
	ClassInvalidAction  Classification = "InvalidAction"
	ClassUnauthorized   Classification = "Unauthorized"
	ClassValidDecodable Classification = "ValidDecodable"
	ClassUnknownFormat  Classification = "UnknownFormat"
)

// Classify buckets a raw response. Order matters: empty first, then textual
// markers, then a structural envelope check, else unknown. "unauthorized" is
// tested before the other markers so a reply like "invalid authorization"
// lands in Unauthorized rather than InvalidAction.
func Classify(resp []byte) Classification {
	if len(resp) == 0 {
		return ClassNoResponse
	}

	text := strings.ToLower(string(resp))
	switch {
	case strings.Contains(text, "unauthorized"):
		return ClassUnauthorized
	case strings.Contains(text, "invalid"):
		return ClassInvalidAction
	case strings.Contains(text, "error"):
		return ClassError
	}

	if amf.Validate(resp) {
		return ClassValidDecodable
	}
	return ClassUnknownFormat
}
