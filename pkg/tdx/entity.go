package tdx

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Entity is a mutable record whose attributes are checked against a Schema.
// Only non-empty attributes are held, so an export never re-sends unset
// fields. An Entity is not safe for concurrent mutation.
type Entity struct {
	schema *Schema
	codec  *DateCodec
	attrs  map[string]Value
}

// NewEntity creates an empty entity. A nil codec writes dates in UTC.
func NewEntity(schema *Schema, codec *DateCodec) *Entity {
	if codec == nil {
		codec = UTCDateCodec()
	}

	return &Entity{
		schema: schema,
		codec:  codec,
		attrs:  make(map[string]Value),
	}
}

// ImportEntity creates an entity and imports data into it.
func ImportEntity(schema *Schema, codec *DateCodec, data map[string]interface{}, strict bool) (*Entity, error) {
	e := NewEntity(schema, codec)
	if err := e.Import(data, strict); err != nil {
		return nil, err
	}

	return e, nil
}

// Schema returns the entity's schema.
func (e *Entity) Schema() *Schema { return e.schema }

// Kind returns the entity kind name.
func (e *Entity) Kind() string { return e.schema.Name() }

// DateCodec returns the codec used for date attributes.
func (e *Entity) DateCodec() *DateCodec { return e.codec }

// Import replaces the entity's attributes with data. Unknown keys fail with
// ImportError in strict mode and are dropped otherwise. Falsy values are
// dropped. On error the entity is left unchanged.
func (e *Entity) Import(data map[string]interface{}, strict bool) error {
	attrs, err := e.coerceAll(data, strict)
	if err != nil {
		return err
	}

	e.attrs = attrs

	return nil
}

// Update merges changes into the entity. With editableOnly set, any key
// outside the editable set is rejected. Every key is checked before the
// entity is touched, so a rejected update leaves it unchanged. A falsy value
// removes the attribute.
func (e *Entity) Update(changes map[string]interface{}, editableOnly bool) error {
	opts := []ValidateOption{WithStrict(), WithDateCodec(e.codec), partial()}
	if editableOnly {
		opts = append(opts, WithEditableOnly())
	}

	if err := e.schema.Validate(changes, opts...); err != nil {
		return err
	}

	coerced := make(map[string]Value, len(changes))
	removed := make([]string, 0)

	for field, raw := range changes {
		if isFalsy(raw) {
			removed = append(removed, field)

			continue
		}

		kind, _ := e.schema.KindOf(field)

		v, err := coerce(kind, raw, e.codec)
		if err != nil {
			return &ImportError{Entity: e.schema.Name(), Field: field, Value: raw, Reason: err.Error()}
		}

		if v.IsZero() {
			removed = append(removed, field)

			continue
		}

		coerced[field] = v
	}

	for _, field := range removed {
		delete(e.attrs, field)
	}

	for field, v := range coerced {
		e.attrs[field] = v
	}

	return nil
}

// Set assigns a single attribute without the editable restriction.
func (e *Entity) Set(field string, value interface{}) error {
	return e.Update(map[string]interface{}{field: value}, false)
}

// Validate checks the entity's current attributes against its schema.
func (e *Entity) Validate(opts ...ValidateOption) error {
	opts = append([]ValidateOption{WithDateCodec(e.codec)}, opts...)

	return e.schema.Validate(e.native(), opts...)
}

// Export returns a wire-ready copy of the attributes with dates re-encoded.
// With validate set, the exported data is validated first.
func (e *Entity) Export(validate bool) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(e.attrs))

	for field, v := range e.attrs {
		if v.IsZero() {
			continue
		}

		out[field] = v.wire(e.codec)
	}

	if validate {
		if err := e.schema.Validate(out, WithStrict(), WithDateCodec(e.codec)); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// MarshalJSON encodes the exported attributes.
func (e *Entity) MarshalJSON() ([]byte, error) {
	out, err := e.Export(false)
	if err != nil {
		return nil, err
	}

	return json.Marshal(out)
}

// Get returns the value of field.
func (e *Entity) Get(field string) (Value, bool) {
	v, ok := e.attrs[field]

	return v, ok
}

// Has reports whether field is set.
func (e *Entity) Has(field string) bool {
	_, ok := e.attrs[field]

	return ok
}

// IntField returns an int attribute, or 0.
func (e *Entity) IntField(field string) int64 {
	return e.attrs[field].Int()
}

// StringField returns a string attribute, or "".
func (e *Entity) StringField(field string) string {
	return e.attrs[field].Str()
}

// ID returns the entity's ID attribute.
func (e *Entity) ID() (int64, bool) {
	v, ok := e.attrs["ID"]
	if !ok || v.Kind() != KindInt {
		return 0, false
	}

	return v.Int(), true
}

// Fields returns the names of the set attributes, sorted.
func (e *Entity) Fields() []string {
	out := make([]string, 0, len(e.attrs))
	for f := range e.attrs {
		out = append(out, f)
	}

	sort.Strings(out)

	return out
}

// Len returns the number of set attributes.
func (e *Entity) Len() int { return len(e.attrs) }

// Clone returns a copy that shares no attribute map with e.
func (e *Entity) Clone() *Entity {
	c := NewEntity(e.schema, e.codec)
	for f, v := range e.attrs {
		c.attrs[f] = v
	}

	return c
}

// Describe prints one attribute per line, names padded to align the values.
func (e *Entity) Describe() string {
	var b strings.Builder
	for _, f := range e.Fields() {
		fmt.Fprintf(&b, "%-25s\t%s\n", f, e.attrs[f].String())
	}

	return b.String()
}

func (e *Entity) native() map[string]interface{} {
	out := make(map[string]interface{}, len(e.attrs))
	for f, v := range e.attrs {
		out[f] = v.Interface()
	}

	return out
}

func (e *Entity) coerceAll(data map[string]interface{}, strict bool) (map[string]Value, error) {
	attrs := make(map[string]Value, len(data))

	for field, raw := range data {
		kind, ok := e.schema.KindOf(field)
		if !ok {
			if strict {
				return nil, &ImportError{Entity: e.schema.Name(), Field: field, Value: raw, Reason: "unknown attribute"}
			}

			continue
		}

		if isFalsy(raw) {
			continue
		}

		v, err := coerce(kind, raw, e.codec)
		if err != nil {
			return nil, &ImportError{Entity: e.schema.Name(), Field: field, Value: raw, Reason: err.Error()}
		}

		if v.IsZero() {
			continue
		}

		attrs[field] = v
	}

	return attrs, nil
}
