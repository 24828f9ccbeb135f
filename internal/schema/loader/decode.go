package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-adfeatures/pkg/schema"
)

type rawDocument struct {
	Groups []rawGroup `json:"features_groups" yaml:"features_groups"`
}

type rawGroup struct {
	Title    string     `json:"title" yaml:"title"`
	Features []rawField `json:"features" yaml:"features"`
}

type rawField struct {
	ID        flexString  `json:"id" yaml:"id"`
	Title     string      `json:"title" yaml:"title"`
	Type      string      `json:"type" yaml:"type"`
	Required  bool        `json:"required" yaml:"required"`
	Units     flexList    `json:"units" yaml:"units"`
	Options   []rawOption `json:"options" yaml:"options"`
	DependsOn flexString  `json:"depends_on" yaml:"depends_on"`
	Default   *rawDefault `json:"default_value" yaml:"default_value"`
	Format    string      `json:"format" yaml:"format"`
	Role      string      `json:"role" yaml:"role"`
}

type rawOption struct {
	ID    flexString `json:"id" yaml:"id"`
	Title flexString `json:"title" yaml:"title"`
	Value flexString `json:"value" yaml:"value"`
}

func (o rawOption) option() schema.Option {
	title := string(o.Title)
	if title == "" {
		title = string(o.Value)
	}
	return schema.Option{ID: string(o.ID), Title: title}
}

// rawDefault accepts either {"options": {"id", "title"}} or a bare scalar.
type rawDefault struct {
	Option *rawOption
	Value  string
}

func (d *rawDefault) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			Options *rawOption `json:"options"`
			Value   flexString `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		d.Option = obj.Options
		d.Value = string(obj.Value)
		return nil
	}
	var scalar flexString
	if err := json.Unmarshal(trimmed, &scalar); err != nil {
		return err
	}
	d.Value = string(scalar)
	return nil
}

func (d *rawDefault) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		var obj struct {
			Options *rawOption `yaml:"options"`
			Value   flexString `yaml:"value"`
		}
		if err := node.Decode(&obj); err != nil {
			return err
		}
		d.Option = obj.Options
		d.Value = string(obj.Value)
		return nil
	}
	var scalar flexString
	if err := node.Decode(&scalar); err != nil {
		return err
	}
	d.Value = string(scalar)
	return nil
}

// flexString normalises ids that arrive as numbers or strings.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*s = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var str string
		if err := json.Unmarshal(trimmed, &str); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(str))
		return nil
	}
	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&num); err == nil {
		*s = flexString(normaliseNumber(num.String()))
		return nil
	}
	var b bool
	if err := json.Unmarshal(trimmed, &b); err == nil {
		*s = flexString(strconv.FormatBool(b))
		return nil
	}
	return fmt.Errorf("expected string or number, got %s", trimmed)
}

func (s *flexString) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected scalar", node.Line)
	}
	if node.Tag == "!!null" {
		*s = ""
		return nil
	}
	value := strings.TrimSpace(node.Value)
	if node.Tag == "!!int" || node.Tag == "!!float" {
		value = normaliseNumber(value)
	}
	*s = flexString(value)
	return nil
}

// normaliseNumber renders integral floats like 20.0 as 20.
func normaliseNumber(raw string) string {
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return raw
}

// flexList accepts a single string or a list of strings.
type flexList []string

func (l *flexList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*l = nil
		return nil
	case len(trimmed) > 0 && trimmed[0] == '[':
		var items []flexString
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*l = collectList(items)
		return nil
	}
	var single flexString
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return err
	}
	*l = collectList([]flexString{single})
	return nil
}

func (l *flexList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var items []flexString
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = collectList(items)
		return nil
	}
	var single flexString
	if err := node.Decode(&single); err != nil {
		return err
	}
	*l = collectList([]flexString{single})
	return nil
}

func collectList(items []flexString) flexList {
	var out flexList
	for _, item := range items {
		if v := strings.TrimSpace(string(item)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// decode parses a JSON or YAML document into schema groups.
func decode(doc schema.Document) ([]schema.Group, error) {
	raw := bytes.TrimSpace(doc.Raw())
	if len(raw) == 0 {
		return nil, errors.New("empty document")
	}

	var parsed rawDocument
	if raw[0] == '{' || raw[0] == '[' {
		if raw[0] == '[' {
			// bare list of groups
			if err := json.Unmarshal(raw, &parsed.Groups); err != nil {
				return nil, fmt.Errorf("decode json: %w", err)
			}
		} else if err := json.Unmarshal(raw, &parsed); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	} else if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	if len(parsed.Groups) == 0 {
		return nil, errors.New("document has no features_groups")
	}

	groups := make([]schema.Group, 0, len(parsed.Groups))
	for _, rg := range parsed.Groups {
		group := schema.Group{Title: strings.TrimSpace(rg.Title)}
		for _, rf := range rg.Features {
			field, err := rf.descriptor()
			if err != nil {
				return nil, err
			}
			group.Fields = append(group.Fields, field)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (rf rawField) descriptor() (schema.FieldDescriptor, error) {
	id := string(rf.ID)
	ft, ok := schema.ParseFieldType(rf.Type)
	if !ok {
		if strings.TrimSpace(rf.Type) == "" {
			return schema.FieldDescriptor{}, fmt.Errorf("field %s: missing type", id)
		}
		return schema.FieldDescriptor{}, fmt.Errorf("field %s: unknown type %q", id, rf.Type)
	}

	field := schema.FieldDescriptor{
		ID:        id,
		Title:     strings.TrimSpace(rf.Title),
		Type:      ft,
		Format:    schema.Format(strings.ToLower(strings.TrimSpace(rf.Format))),
		Required:  rf.Required,
		Units:     []string(rf.Units),
		DependsOn: string(rf.DependsOn),
		Role:      schema.Role(strings.TrimSpace(rf.Role)),
	}
	for _, ro := range rf.Options {
		opt := ro.option()
		if opt.ID == "" {
			return schema.FieldDescriptor{}, fmt.Errorf("field %s: option without id", id)
		}
		field.Options = append(field.Options, opt)
	}
	if rf.Default != nil {
		def := &schema.DeclaredDefault{Value: rf.Default.Value}
		if rf.Default.Option != nil {
			opt := rf.Default.Option.option()
			def.Option = &opt
		}
		if !def.IsZero() {
			field.DeclaredDefault = def
		}
	}
	return field, nil
}
