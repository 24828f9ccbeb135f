package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-adfeatures/pkg/collab"
)

// cleanJSON strips markdown code fences and any prose around the outermost
// JSON object of a model reply.
func cleanJSON(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```JSON")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		text = text[start : end+1]
	}
	return text
}

// candidate accepts the shapes models produce for one field: a bare scalar
// or an object with label, labelId/label_id and unit.
type candidate collab.Candidate

func (c *candidate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '{' {
		label, err := scalar(data)
		if err != nil {
			return err
		}
		c.Label = label
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	read := func(keys ...string) (string, error) {
		for _, key := range keys {
			if raw, ok := obj[key]; ok {
				return scalar(raw)
			}
		}
		return "", nil
	}
	var err error
	if c.Label, err = read("label", "value"); err != nil {
		return err
	}
	if c.LabelID, err = read("labelId", "label_id", "id"); err != nil {
		return err
	}
	if c.Unit, err = read("unit"); err != nil {
		return err
	}
	return nil
}

func scalar(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unexpected %T value", v)
	}
}

func parseCandidate(reply string) (collab.Candidate, error) {
	var c candidate
	if err := json.Unmarshal([]byte(cleanJSON(reply)), &c); err != nil {
		return collab.Candidate{}, fmt.Errorf("llm: decode candidate: %w", err)
	}
	return collab.Candidate(c), nil
}

func parseStrings(reply string) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleanJSON(reply)), &raw); err != nil {
		return nil, fmt.Errorf("llm: decode object: %w", err)
	}
	out := make(map[string]string, len(raw))
	for key, value := range raw {
		s, err := scalar(value)
		if err != nil {
			// nested values are flattened to their JSON text
			s = strings.TrimSpace(string(value))
		}
		out[key] = s
	}
	return out, nil
}
