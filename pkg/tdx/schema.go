package tdx

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Static errors for err113 compliance.
var (
	errNotInteger = errors.New("cannot be converted to integer")
	errNotDecimal = errors.New("cannot be converted to decimal number")
	errNotBool    = errors.New("cannot be converted to boolean")
	errNotDate    = errors.New("cannot be converted to a date")
	errNotList    = errors.New("list value required")
	errNotDict    = errors.New("object value required")
	errNotString  = errors.New("string value required")
)

// Kind is the declared type of an attribute.
type Kind int

// Attribute kinds. Anything not declared otherwise is a string.
const (
	KindString Kind = iota
	KindBool
	KindInt
	KindDecimal
	KindDate
	KindList
	KindDict
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindDate:
		return "date"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	default:
		return "string"
	}
}

// SchemaDefinition lists the attribute names of an entity kind by type plus
// the required and editable subsets.
type SchemaDefinition struct {
	Strings  []string
	Bools    []string
	Ints     []string
	Decimals []string
	Dates    []string
	Lists    []string
	Dicts    []string
	Required []string
	Editable []string
}

// Schema classifies the attribute names of one entity kind: valid, required,
// editable and typed.
type Schema struct {
	name     string
	kinds    map[string]Kind
	required []string
	editable map[string]bool
}

// NewSchema builds a schema. Required and editable names that were not given a
// type are registered as strings.
func NewSchema(name string, def SchemaDefinition) *Schema {
	s := &Schema{
		name:     name,
		kinds:    make(map[string]Kind),
		editable: make(map[string]bool),
	}

	register := func(names []string, kind Kind) {
		for _, n := range names {
			s.kinds[n] = kind
		}
	}

	register(def.Strings, KindString)
	register(def.Bools, KindBool)
	register(def.Ints, KindInt)
	register(def.Decimals, KindDecimal)
	register(def.Dates, KindDate)
	register(def.Lists, KindList)
	register(def.Dicts, KindDict)

	for _, n := range def.Required {
		if _, ok := s.kinds[n]; !ok {
			s.kinds[n] = KindString
		}

		s.required = append(s.required, n)
	}

	for _, n := range def.Editable {
		if _, ok := s.kinds[n]; !ok {
			s.kinds[n] = KindString
		}

		s.editable[n] = true
	}

	return s
}

// Name returns the entity kind, such as "ticket".
func (s *Schema) Name() string { return s.name }

// IsValid reports whether field is a recognized attribute.
func (s *Schema) IsValid(field string) bool {
	_, ok := s.kinds[field]

	return ok
}

// IsEditable reports whether field may be changed by an update.
func (s *Schema) IsEditable(field string) bool { return s.editable[field] }

// IsRequired reports whether field must be present to create the entity.
func (s *Schema) IsRequired(field string) bool {
	for _, r := range s.required {
		if r == field {
			return true
		}
	}

	return false
}

// KindOf returns the declared kind of field.
func (s *Schema) KindOf(field string) (Kind, bool) {
	k, ok := s.kinds[field]

	return k, ok
}

// Required returns the required attribute names in declaration order.
func (s *Schema) Required() []string {
	out := make([]string, len(s.required))
	copy(out, s.required)

	return out
}

// Editable returns the editable attribute names, sorted.
func (s *Schema) Editable() []string {
	out := make([]string, 0, len(s.editable))
	for n := range s.editable {
		out = append(out, n)
	}

	sort.Strings(out)

	return out
}

// Fields returns every valid attribute name, sorted.
func (s *Schema) Fields() []string {
	out := make([]string, 0, len(s.kinds))
	for n := range s.kinds {
		out = append(out, n)
	}

	sort.Strings(out)

	return out
}

// ValidateOption adjusts Schema.Validate.
type ValidateOption func(*validateOptions)

type validateOptions struct {
	editableOnly bool
	strict       bool
	partial      bool
	codec        *DateCodec
}

// WithEditableOnly skips the required check and rejects non-editable keys.
func WithEditableOnly() ValidateOption {
	return func(o *validateOptions) { o.editableOnly = true }
}

// WithStrict rejects keys outside the valid set instead of ignoring them.
func WithStrict() ValidateOption {
	return func(o *validateOptions) { o.strict = true }
}

// partial skips the required check for data that is merged into an entity.
func partial() ValidateOption {
	return func(o *validateOptions) { o.partial = true }
}

// WithDateCodec sets the codec used to check date coercibility.
func WithDateCodec(codec *DateCodec) ValidateOption {
	return func(o *validateOptions) { o.codec = codec }
}

// Validate checks data against the schema without modifying anything. Required
// attributes must be present and of their declared int or string kind, and
// every present typed attribute must be coercible to its kind.
func (s *Schema) Validate(data map[string]interface{}, opts ...ValidateOption) error {
	o := &validateOptions{codec: UTCDateCodec()}
	for _, opt := range opts {
		opt(o)
	}

	if !o.editableOnly && !o.partial {
		for _, field := range s.required {
			value, ok := data[field]
			if !ok || value == nil {
				return s.invalid(field, "value required")
			}

			switch s.kinds[field] {
			case KindInt:
				if !isIntegral(value) {
					return s.invalid(field, "integer value required")
				}
			case KindString:
				if _, isString := value.(string); !isString {
					return s.invalid(field, "string value required")
				}
			default:
			}
		}
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, field := range keys {
		kind, ok := s.kinds[field]
		if !ok {
			if o.strict {
				return s.invalid(field, fmt.Sprintf("with value %v is not a valid %s attribute", data[field], s.name))
			}

			continue
		}

		if o.editableOnly && !s.editable[field] {
			return s.invalid(field, "not editable (editable-only validation)")
		}

		value := data[field]
		if value == nil {
			continue
		}

		if _, err := coerce(kind, value, o.codec); err != nil {
			return s.invalid(field, fmt.Sprintf("value %v %s", value, err.Error()))
		}
	}

	return nil
}

func (s *Schema) invalid(field, rule string) error {
	return &ValidationError{Entity: s.name, Field: field, Rule: rule}
}

// Value is a typed attribute value. Exactly one payload is meaningful,
// selected by Kind.
type Value struct {
	kind Kind
	str  string
	b    bool
	i    int64
	f    float64
	t    time.Time
	list []interface{}
	dict map[string]interface{}
}

// StringValue builds a string value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// IntValue builds an int value.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// DecimalValue builds a decimal value.
func DecimalValue(f float64) Value { return Value{kind: KindDecimal, f: f} }

// BoolValue builds a bool value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// DateValue builds a date value.
func DateValue(t time.Time) Value { return Value{kind: KindDate, t: t} }

// ListValue builds a list value.
func ListValue(l []interface{}) Value { return Value{kind: KindList, list: l} }

// DictValue builds a dict value.
func DictValue(d map[string]interface{}) Value { return Value{kind: KindDict, dict: d} }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload.
func (v Value) Str() string { return v.str }

// Bool returns the bool payload.
func (v Value) Bool() bool { return v.b }

// Int returns the int payload.
func (v Value) Int() int64 { return v.i }

// Decimal returns the decimal payload.
func (v Value) Decimal() float64 { return v.f }

// Time returns the date payload.
func (v Value) Time() time.Time { return v.t }

// List returns the list payload.
func (v Value) List() []interface{} { return v.list }

// Dict returns the dict payload.
func (v Value) Dict() map[string]interface{} { return v.dict }

// IsZero reports whether the value is falsy: empty string, false, zero,
// zero time, or an empty list or dict.
func (v Value) IsZero() bool {
	switch v.kind {
	case KindBool:
		return !v.b
	case KindInt:
		return v.i == 0
	case KindDecimal:
		return v.f == 0
	case KindDate:
		return v.t.IsZero()
	case KindList:
		return len(v.list) == 0
	case KindDict:
		return len(v.dict) == 0
	default:
		return v.str == ""
	}
}

// Interface returns the payload as a plain Go value.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindDecimal:
		return v.f
	case KindDate:
		return v.t
	case KindList:
		return v.list
	case KindDict:
		return v.dict
	default:
		return v.str
	}
}

// Equal compares two values of the same kind. Dates compare as instants.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindDate:
		return v.t.Equal(other.t)
	case KindList, KindDict:
		return reflect.DeepEqual(v.Interface(), other.Interface())
	default:
		return v.Interface() == other.Interface()
	}
}

// String formats the value for display.
func (v Value) String() string {
	switch v.kind {
	case KindDate:
		return v.t.Format(time.RFC3339)
	case KindString:
		return v.str
	default:
		return fmt.Sprint(v.Interface())
	}
}

func (v Value) wire(codec *DateCodec) interface{} {
	if v.kind == KindDate {
		return codec.Format(v.t)
	}

	return v.Interface()
}

// coerce converts a raw value to kind.
func coerce(kind Kind, raw interface{}, codec *DateCodec) (Value, error) {
	switch kind {
	case KindInt:
		i, err := toInt(raw)
		if err != nil {
			return Value{}, err
		}

		return IntValue(i), nil
	case KindDecimal:
		f, err := toDecimal(raw)
		if err != nil {
			return Value{}, err
		}

		return DecimalValue(f), nil
	case KindBool:
		b, err := toBool(raw)
		if err != nil {
			return Value{}, err
		}

		return BoolValue(b), nil
	case KindDate:
		t, err := codec.Coerce(raw)
		if err != nil {
			return Value{}, errNotDate
		}

		// The wire format carries whole seconds only.
		return DateValue(t.Truncate(time.Second)), nil
	case KindList:
		l, err := toList(raw)
		if err != nil {
			return Value{}, err
		}

		return ListValue(l), nil
	case KindDict:
		d, err := toDict(raw)
		if err != nil {
			return Value{}, err
		}

		return DictValue(d), nil
	default:
		s, err := toString(raw)
		if err != nil {
			return Value{}, err
		}

		return StringValue(s), nil
	}
}

// isFalsy reports whether a raw value would be dropped on import.
func isFalsy(raw interface{}) bool {
	if raw == nil {
		return true
	}

	switch v := raw.(type) {
	case string:
		return v == ""
	case bool:
		return !v
	case json.Number:
		f, err := v.Float64()

		return err == nil && f == 0
	case time.Time:
		return v.IsZero()
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

func isIntegral(raw interface{}) bool {
	switch v := raw.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return v == math.Trunc(v) && !math.IsInf(v, 0)
	case float32:
		return float64(v) == math.Trunc(float64(v))
	case json.Number:
		_, err := v.Int64()

		return err == nil
	default:
		return false
	}
}

func toInt(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errNotInteger
		}

		return floatToInt(f)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}

		return 0, errNotInteger
	case bool:
		return 0, errNotInteger
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, errNotInteger
		}

		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return floatToInt(rv.Float())
	default:
		return 0, errNotInteger
	}
}

// floatToInt accepts only whole numbers that fit in an int64. float64(MaxInt64)
// rounds up to 2^63, so the upper bound is exclusive.
func floatToInt(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, errNotInteger
	}

	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, errNotInteger
	}

	return int64(f), nil
}

func toDecimal(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, errNotDecimal
		}

		return f, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, errNotDecimal
		}

		return f, nil
	case bool:
		return 0, errNotDecimal
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	default:
		return 0, errNotDecimal
	}
}

func toBool(raw interface{}) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, errNotBool
		}

		return b, nil
	default:
		if isIntegral(raw) {
			i, _ := toInt(raw)

			return i != 0, nil
		}

		return false, errNotBool
	}
}

func toList(raw interface{}) ([]interface{}, error) {
	if l, ok := raw.([]interface{}); ok {
		return l, nil
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errNotList
	}

	out := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}

	return out, nil
}

func toDict(raw interface{}) (map[string]interface{}, error) {
	if d, ok := raw.(map[string]interface{}); ok {
		return d, nil
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, errNotDict
	}

	out := make(map[string]interface{}, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}

	return out, nil
}

func toString(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	default:
		return "", errNotString
	}
}
