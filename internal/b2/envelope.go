package b2

import "encoding/json"

// Envelope is the uniform result of a remote call. StatusCode outside
// [200,300) is the sole failure discriminator downstream code relies on.
type Envelope struct {
	StatusCode int
	Body       any
}

// Normalize maps an arbitrary decoded transport result into an Envelope.
// The B2 surface answers in at least three shapes: the JSON body directly
// with no wrapper, an object carrying statusCode/body, and an object
// carrying status/data (either payload possibly a JSON string needing a
// second parse). Resolution order:
//
//  1. a statusCode/status field numerically outside [200,300) marks the call
//     failed; the body/data payload is unwrapped and returned with it,
//  2. otherwise a present body/data field marks success (status 200),
//  3. otherwise the raw value itself is the success body.
//
// A success payload that legitimately contains a field named statusCode is
// indistinguishable from a wrapper and is treated as one. That ambiguity is
// inherent to the wire shapes and accepted here.
func Normalize(raw any) Envelope {
	m, ok := raw.(map[string]any)
	if !ok {
		return Envelope{StatusCode: 200, Body: raw}
	}

	status, hasStatus := firstInt(m, "statusCode", "status")
	payload, hasPayload := firstField(m, "body", "data")

	if hasStatus && (status < 200 || status >= 300) {
		return Envelope{StatusCode: status, Body: unwrapPayload(payload)}
	}
	if hasPayload {
		return Envelope{StatusCode: 200, Body: unwrapPayload(payload)}
	}
	return Envelope{StatusCode: 200, Body: raw}
}

// OK reports whether the envelope carries a success status.
func (e Envelope) OK() bool {
	return e.StatusCode >= 200 && e.StatusCode < 300
}

// Message extracts the remote-provided error message from the body, if any.
// B2 error bodies carry {status, code, message}.
func (e Envelope) Message() string {
	if s := nestedString(e.Body, "message"); s != "" {
		return s
	}
	return nestedString(e.Body, "code")
}

// unwrapPayload re-parses string payloads as JSON when possible.
func unwrapPayload(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return s
	}
	return parsed
}

func firstField(m map[string]any, names ...string) (any, bool) {
	for _, name := range names {
		if v, ok := m[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func firstInt(m map[string]any, names ...string) (int, bool) {
	for _, name := range names {
		if v, ok := m[name]; ok {
			if n, ok := asInt(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

// nestedString walks nested maps and returns the string at path, or "".
func nestedString(v any, path ...string) string {
	for i, name := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return ""
		}
		v, ok = m[name]
		if !ok {
			return ""
		}
		if i == len(path)-1 {
			s, _ := v.(string)
			return s
		}
	}
	return ""
}

// nestedInt64 walks nested maps and returns the integer at path, or 0.
func nestedInt64(v any, path ...string) int64 {
	for i, name := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return 0
		}
		v, ok = m[name]
		if !ok {
			return 0
		}
		if i == len(path)-1 {
			if n, ok := asInt(v); ok {
				return int64(n)
			}
			return 0
		}
	}
	return 0
}
