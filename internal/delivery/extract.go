package delivery

import "strings"

// Payload is a flattened webhook body (form fields or top-level JSON keys).
type Payload map[string]string

func (p Payload) get(key string) string { return strings.TrimSpace(p[key]) }

// StatusRef is the normalized correlation pair pulled from a payload.
type StatusRef struct {
	SID    string
	Status string
}

// extractor pulls a StatusRef out of one field-naming convention.
type extractor struct {
	name      string
	sidKey    string
	statusKey string
}

// extractors are tried in order; the first complete pair wins.
var extractors = []extractor{
	{name: "message", sidKey: "MessageSid", statusKey: "MessageStatus"},
	{name: "sms", sidKey: "SmsSid", statusKey: "SmsStatus"},
}

func (e extractor) extract(p Payload) (StatusRef, bool) {
	sid, status := p.get(e.sidKey), p.get(e.statusKey)
	if sid == "" || status == "" {
		return StatusRef{}, false
	}
	return StatusRef{SID: sid, Status: status}, true
}

// Extract returns the sid/status pair using the first matching convention.
func Extract(p Payload) (StatusRef, bool) {
	for _, e := range extractors {
		if ref, ok := e.extract(p); ok {
			return ref, true
		}
	}
	return StatusRef{}, false
}
