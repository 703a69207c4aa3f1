// Package document converts FRU areas to and from YAML and JSON.
//
// A YAML document holds one area keyed by its type:
//
//	BoardInfo:
//	  language_code: 0
//	  mfg_date_time: 2024-03-05T12:30:00Z
//	  manufacturer: ACME
//	  part_number: {value: "1234", encoding: bcd_plus}
//
// Strings use the encoding declared by the schema unless given in the
// {value, encoding} form. Field order follows the schema.
package document

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/ssargent/frugy/pkg/fru"
	"github.com/ssargent/frugy/pkg/registry"
	"gopkg.in/yaml.v3"
)

var ErrFormat = errors.New("document: malformed area document")

// Pair is one field in external form.
type Pair struct {
	Name  string
	Value any
}

// Fields is an ordered set of fields that marshals to a YAML mapping or a
// JSON object with keys in schema order.
type Fields []Pair

// EncodedText is a string with an explicit encoding.
type EncodedText struct {
	Value    string `json:"value" yaml:"value"`
	Encoding string `json:"encoding" yaml:"encoding"`
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02"}

// FieldsOf returns the external form of rec. format_version is included
// only when it differs from the default.
func FieldsOf(rec *fru.Record) Fields {
	defaults := make(map[string]fru.Encoding)
	for _, e := range rec.Schema().Entries() {
		if sf, ok := e.Proto.(*fru.StringField); ok {
			defaults[e.Name] = sf.Encoding()
		}
	}

	out := make(Fields, 0, rec.Schema().Len()+1)
	if v := rec.FormatVersion(); v != fru.DefaultFormatVersion {
		out = append(out, Pair{Name: fru.FormatVersion, Value: v})
	}
	for _, nv := range rec.ToDict() {
		p := Pair{Name: nv.Name, Value: fru.Native(nv.Value)}
		switch v := nv.Value.(type) {
		case fru.Text:
			f, _ := rec.Field(nv.Name)
			if sf, ok := f.(*fru.StringField); ok && sf.Encoding() != defaults[nv.Name] {
				p.Value = EncodedText{Value: string(v), Encoding: sf.Encoding().String()}
			}
		case fru.Scalar:
			if nv.Name == registry.MfgDateTimeField {
				p.Value = registry.MfgTime(uint64(v))
			}
		}
		out = append(out, p)
	}
	return out
}

func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", p.Name)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f Fields) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range f {
		v := &yaml.Node{}
		if err := v.Encode(p.Value); err != nil {
			return nil, errors.Wrapf(err, "field %s", p.Name)
		}
		if v.Kind == yaml.SequenceNode || v.Kind == yaml.MappingNode {
			v.Style = yaml.FlowStyle
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: p.Name}, v)
	}
	return n, nil
}

// EncodeYAML renders rec as a single-area YAML document.
func EncodeYAML(rec *fru.Record) ([]byte, error) {
	fields, err := FieldsOf(rec).MarshalYAML()
	if err != nil {
		return nil, err
	}
	doc := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: rec.Schema().Name()},
		fields.(*yaml.Node),
	}}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, "encode yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encode yaml")
	}
	return buf.Bytes(), nil
}

// Option adjusts how DecodeYAML builds a record.
type Option func(*fru.Record)

// WithEncoding sets every string field to enc before the document is
// applied. Strings given in {value, encoding} form keep their own encoding.
func WithEncoding(enc fru.Encoding) Option {
	return func(rec *fru.Record) {
		for _, nv := range rec.ToDict() {
			if f, _ := rec.Field(nv.Name); f != nil {
				if sf, ok := f.(*fru.StringField); ok {
					sf.SetEncoding(enc)
				}
			}
		}
	}
}

// DecodeYAML parses a single-area YAML document into a new record of the
// type it names.
func DecodeYAML(reg *registry.Registry, data []byte, opts ...Option) (*fru.Record, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrapf(ErrFormat, "parse yaml: %v", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) != 1 {
		return nil, errors.Wrap(ErrFormat, "empty document")
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode || len(top.Content) != 2 {
		return nil, errors.Wrap(ErrFormat, "document must hold exactly one area")
	}

	rec, err := reg.NewRecord(top.Content[0].Value, nil)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(rec)
	}
	if err := ApplyYAML(rec, top.Content[1]); err != nil {
		return nil, err
	}
	return rec, nil
}

// ApplyYAML sets the fields listed in the mapping node n on rec.
// Encodings given in {value, encoding} form are applied even if a later
// value fails; values are applied all or nothing.
func ApplyYAML(rec *fru.Record, n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return errors.Wrapf(ErrFormat, "%s: fields must be a mapping", rec.Schema().Name())
	}
	values := make(map[string]fru.Value, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name, node := n.Content[i].Value, n.Content[i+1]

		var raw any
		f, _ := rec.Field(name)
		if _, isString := f.(*fru.StringField); isString && node.Kind == yaml.ScalarNode {
			if node.ShortTag() != "!!null" {
				raw = node.Value
			}
		} else if err := node.Decode(&raw); err != nil {
			return errors.Wrapf(ErrFormat, "%s: %v", name, err)
		}

		v, err := convert(rec, name, raw)
		if err != nil {
			return err
		}
		values[name] = v
	}
	return rec.Update(values)
}

// EncodeJSON renders the fields of rec as a JSON object.
func EncodeJSON(rec *fru.Record) ([]byte, error) {
	return FieldsOf(rec).MarshalJSON()
}

// ApplyJSON sets the fields of the JSON object data on rec.
func ApplyJSON(rec *fru.Record, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return errors.Wrapf(ErrFormat, "parse json: %v", err)
	}
	values := make(map[string]fru.Value, len(obj))
	for name, raw := range obj {
		v, err := convert(rec, name, raw)
		if err != nil {
			return err
		}
		values[name] = v
	}
	return rec.Update(values)
}

// ApplyOverride sets one field from a "name=value" expression. The name may
// be prefixed with the area type, as in "BoardInfo.serial_number=123".
func ApplyOverride(rec *fru.Record, expr string) error {
	name, value, ok := strings.Cut(expr, "=")
	if !ok {
		return errors.Wrapf(ErrFormat, "override %q is not name=value", expr)
	}
	name = strings.TrimPrefix(strings.TrimSpace(name), rec.Schema().Name()+".")

	var raw any = value
	f, _ := rec.Field(name)
	if _, isString := f.(*fru.StringField); !isString {
		if err := yaml.Unmarshal([]byte(value), &raw); err != nil {
			return errors.Wrapf(ErrFormat, "override %s: %v", name, err)
		}
	}
	v, err := convert(rec, name, raw)
	if err != nil {
		return err
	}
	return rec.Set(name, v)
}

// convert turns a decoded YAML or JSON value into the Value of field name.
func convert(rec *fru.Record, name string, raw any) (fru.Value, error) {
	if name == fru.FormatVersion {
		return toValue(name, raw)
	}
	f, ok := rec.Field(name)
	if !ok {
		return nil, errors.Wrapf(fru.ErrUnknownField, "%s has no field %q", rec.Schema().Name(), name)
	}

	switch field := f.(type) {
	case *fru.StringField:
		switch x := raw.(type) {
		case nil:
			return fru.Text(""), nil
		case string:
			return fru.Text(x), nil
		case json.Number:
			return fru.Text(x.String()), nil
		case map[string]any:
			return encodedText(field, name, x)
		default:
			return nil, errors.Wrapf(ErrFormat, "%s: expected a string, got %v", name, raw)
		}
	default:
		if name == registry.MfgDateTimeField {
			if t, ok := asTime(raw); ok {
				minutes, err := registry.MfgDateTime(t)
				if err != nil {
					return nil, err
				}
				return fru.Scalar(minutes), nil
			}
		}
		return toValue(name, raw)
	}
}

func encodedText(field *fru.StringField, name string, m map[string]any) (fru.Value, error) {
	s, ok := m["value"].(string)
	if !ok {
		if n, isNum := m["value"].(json.Number); isNum {
			s, ok = n.String(), true
		}
	}
	if !ok && m["value"] != nil {
		return nil, errors.Wrapf(ErrFormat, "%s: value must be a string", name)
	}
	if encName, ok := m["encoding"].(string); ok {
		enc, err := fru.ParseEncoding(encName)
		if err != nil {
			return nil, errors.Wrap(err, name)
		}
		field.SetEncoding(enc)
	}
	return fru.Text(s), nil
}

func toValue(name string, raw any) (fru.Value, error) {
	v, err := fru.ValueOf(normalize(raw))
	return v, errors.Wrap(err, name)
}

// normalize replaces json.Number with uint64 so fru.ValueOf accepts it.
func normalize(raw any) any {
	switch x := raw.(type) {
	case json.Number:
		if u, err := strconv.ParseUint(x.String(), 10, 64); err == nil {
			return u
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	default:
		return raw
	}
}

func asTime(raw any) (time.Time, bool) {
	switch x := raw.(type) {
	case time.Time:
		return x, true
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
