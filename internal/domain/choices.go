package domain

import "encoding/json"

// DecodeChoices accepts the shapes a storage layer may hand back for a choices column:
// a list, a JSON-encoded list (string or bytes), or anything else, which yields an empty list.
func DecodeChoices(raw any) []string {
	switch v := raw.(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return []string{}
			}
			out = append(out, s)
		}
		return out
	case string:
		return decodeChoicesJSON([]byte(v))
	case []byte:
		return decodeChoicesJSON(v)
	case json.RawMessage:
		return decodeChoicesJSON(v)
	default:
		return []string{}
	}
}

func decodeChoicesJSON(data []byte) []string {
	var out []string
	if err := json.Unmarshal(data, &out); err != nil || out == nil {
		// Some writers double-encode: a JSON string holding a JSON list.
		var inner string
		if err := json.Unmarshal(data, &inner); err == nil && inner != "" && inner[0] == '[' {
			return decodeChoicesJSON([]byte(inner))
		}
		return []string{}
	}
	return out
}
