package vapi

import "strings"

// Event normalization for inbound webhook payloads.
//
// The calling service is inconsistent about event naming: the same concept
// arrives as "call.ended", "call-ended", "ended" or "completed" depending on
// the event source and API revision. Everything here is pure; handlers decide
// what to do with the result.

// TypeUnknown is returned when an event has no usable type field.
const TypeUnknown = "unknown"

// Canonical event types produced by NormalizeEventType. Unrecognized types
// pass through with separators normalized rather than collapsing to unknown.
const (
	TypeCallStarted  = "call-started"
	TypeCallEnded    = "call-ended"
	TypeTranscript   = "transcript"
	TypeFunctionCall = "function-call"
	TypeHang         = "hang"
	TypeSpeechUpdate = "speech-update"
)

// NormalizeEventType maps a raw event type to its canonical spelling.
// Matching is case-insensitive and treats "." and "-" separators as
// equivalent. A missing or non-string type yields TypeUnknown.
func NormalizeEventType(raw any) string {
	s, ok := raw.(string)
	if !ok || s == "" {
		return TypeUnknown
	}
	t := strings.ReplaceAll(strings.TrimSpace(strings.ToLower(s)), ".", "-")
	switch t {
	case "call-started", "started":
		return TypeCallStarted
	case "call-ended", "ended", "completed":
		return TypeCallEnded
	case "transcript", "transcript-final", "transcript-partial":
		return TypeTranscript
	case "function-call", "tool-call":
		return TypeFunctionCall
	case "hang", "hangup", "call-hang":
		return TypeHang
	case "speech-update", "speech":
		return TypeSpeechUpdate
	default:
		return t
	}
}

// ExtractCallID returns the external call id carried by an event, checking
// the nested call object first, then top-level id, then callId. Empty string
// means the event is not actionable and should be dropped by the caller.
func ExtractCallID(event map[string]any) string {
	if event == nil {
		return ""
	}
	if call, ok := event["call"].(map[string]any); ok {
		if id, ok := call["id"].(string); ok && id != "" {
			return id
		}
	}
	if id, ok := event["id"].(string); ok && id != "" {
		return id
	}
	if id, ok := event["callId"].(string); ok && id != "" {
		return id
	}
	return ""
}

// Update is the canonical decision derived from one event: which status
// and/or transcript to write onto the matching call record.
type Update struct {
	// Status is the new status, empty when the event carries none.
	// Deliberately unvalidated: a direct status field on the event is passed
	// through verbatim.
	Status string

	// Transcript is nil when the event carries none.
	Transcript any

	// Type is the normalized event type.
	Type string
}

// DeriveUpdate infers a status/transcript update from an event.
//
// Type-based inference: call-started means in-progress, call-ended means
// completed, transcript events carry the transcript field (falling back to
// text). A direct string status field on the event unconditionally overrides
// the inferred status.
func DeriveUpdate(event map[string]any) Update {
	var rawType any
	if event != nil {
		rawType = event["type"]
	}
	u := Update{Type: NormalizeEventType(rawType)}

	switch u.Type {
	case TypeCallStarted:
		u.Status = "in-progress"
	case TypeCallEnded:
		u.Status = "completed"
	case TypeTranscript:
		if t, ok := event["transcript"]; ok && t != nil {
			u.Transcript = t
		} else if t, ok := event["text"]; ok && t != nil {
			u.Transcript = t
		}
	}

	if event != nil {
		if s, ok := event["status"].(string); ok && s != "" {
			u.Status = s
		}
	}
	return u
}
