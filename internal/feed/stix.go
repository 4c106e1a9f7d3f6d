package feed

import (
	"encoding/json"
	"fmt"
)

// ParseSTIXBundle decodes a STIX bundle and returns its objects array in
// feed order. A malformed bundle is fatal for the run; a bundle without
// an objects key yields an empty sequence.
func ParseSTIXBundle(raw []byte) ([]map[string]any, error) {
	var bundle struct {
		Objects []map[string]any `json:"objects"`
	}
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("parse stix bundle: %w", err)
	}
	return bundle.Objects, nil
}

// EncodeSTIXObjects serializes each STIX object back to JSON for sinks
// that carry indicators as opaque message strings. Order is preserved.
func EncodeSTIXObjects(objects []map[string]any) ([]string, error) {
	messages := make([]string, 0, len(objects))
	for _, obj := range objects {
		data, err := json.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("encode stix object: %w", err)
		}
		messages = append(messages, string(data))
	}
	return messages, nil
}
