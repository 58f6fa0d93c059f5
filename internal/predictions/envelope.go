package predictions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Field names used by the prediction service in its response envelopes.
const (
	FieldSMILES                   = "SMILES"
	FieldPrediction               = "Prediction"
	FieldConfidence               = "Confidence (%)"
	FieldCounterfactualConfidence = "Confidence"
	FieldApplicability            = "Applicability"
	FieldStructure                = "Chemical structure"
)

// Column is one field of an envelope: row-index key to value, in the order
// the keys appeared on the wire.
type Column struct {
	keys   []string
	values map[string]string
}

// NewColumn builds a column from alternating key/value pairs.
func NewColumn(pairs ...string) *Column {
	c := &Column{values: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		c.Set(pairs[i], pairs[i+1])
	}
	return c
}

// Set stores a value. A new key is appended to the key order.
func (c *Column) Set(key, value string) {
	if c.values == nil {
		c.values = make(map[string]string)
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// Get returns the value stored for key.
func (c *Column) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.values[key]
	return v, ok
}

// Keys returns the keys in wire order.
func (c *Column) Keys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.keys...)
}

// Len reports the number of keys.
func (c *Column) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// UnmarshalJSON decodes an object while keeping key order. Anything that is
// not an object decodes to an empty column.
func (c *Column) UnmarshalJSON(b []byte) error {
	*c = Column{values: map[string]string{}}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode column: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode column key: %w", err)
		}
		key, _ := kt.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode column value %q: %w", key, err)
		}
		if v, ok := scalarText(raw); ok {
			c.Set(key, v)
		}
	}
	return nil
}

// MarshalJSON writes the column back in key order.
func (c Column) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(c.values[k])
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// scalarText renders a JSON scalar as text. null and nested values are dropped.
func scalarText(raw json.RawMessage) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return "", false
	}
	switch v := tok.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		if v {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}

// Envelope is the service's column-of-maps response shape.
type Envelope struct {
	fields map[string]*Column
}

// NewEnvelope returns an empty envelope.
func NewEnvelope() *Envelope {
	return &Envelope{fields: map[string]*Column{}}
}

// Field returns the named column or nil.
func (e *Envelope) Field(name string) *Column {
	if e == nil {
		return nil
	}
	return e.fields[name]
}

// Set stores a column under name.
func (e *Envelope) Set(name string, col *Column) *Envelope {
	if e.fields == nil {
		e.fields = map[string]*Column{}
	}
	e.fields[name] = col
	return e
}

// UnmarshalJSON decodes each field into a Column. Non-object fields become
// empty columns rather than failing the whole envelope.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	e.fields = make(map[string]*Column, len(raw))
	for name, v := range raw {
		col := &Column{}
		if err := col.UnmarshalJSON(v); err != nil {
			return err
		}
		e.fields[name] = col
	}
	return nil
}

// MarshalJSON writes the envelope as an object of columns.
func (e Envelope) MarshalJSON() ([]byte, error) {
	out := make(map[string]*Column, len(e.fields))
	for k, v := range e.fields {
		out[k] = v
	}
	return json.Marshal(out)
}

// PredictionResponse is the body returned for a primary prediction request.
type PredictionResponse struct {
	Predictions *Envelope `json:"predictions"`
}

// CounterfactualResponse is the body returned by both secondary generation endpoints.
type CounterfactualResponse struct {
	CounterfactualPrediction *Envelope `json:"CounterfactualPrediction"`
}

// DecodePredictionResponse reads a primary response body.
func DecodePredictionResponse(r io.Reader) (*PredictionResponse, error) {
	var out PredictionResponse
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// DecodeCounterfactualResponse reads a secondary response body.
func DecodeCounterfactualResponse(r io.Reader) (*CounterfactualResponse, error) {
	var out CounterfactualResponse
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
