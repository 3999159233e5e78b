package tdx

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FindChoice returns the first choice of attr whose name contains key
// case-insensitively, or whose ID equals key.
func FindChoice(attr CustomAttribute, key string) (Choice, error) {
	needle := strings.ToLower(strings.TrimSpace(key))

	for _, c := range attr.Choices {
		if strconv.Itoa(c.ID) == needle {
			return c, nil
		}
	}

	for _, c := range attr.Choices {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			return c, nil
		}
	}

	return Choice{}, &NotFoundError{Kind: "custom attribute choice", Key: key, Scope: attr.Name}
}

// IsDateAttribute reports whether attr holds a date value.
func IsDateAttribute(attr CustomAttribute) bool {
	return strings.EqualFold(attr.FieldType, "datepicker") ||
		strings.EqualFold(attr.DataType, "date") ||
		strings.EqualFold(attr.DataType, "datetime")
}

// ResolveCustomAttributeValue builds the wire value of attr for value. A
// choice-bearing attribute resolves to the matching choice ID. A date
// attribute is re-encoded in the wire date format. Anything else is passed
// through as a string.
func ResolveCustomAttributeValue(attr CustomAttribute, value interface{}, codec *DateCodec) (CustomAttributeValue, error) {
	if codec == nil {
		codec = UTCDateCodec()
	}

	out := CustomAttributeValue{ID: attr.ID}

	if len(attr.Choices) > 0 {
		key, err := toString(value)
		if err != nil {
			return out, &ObjectTypeError{Expected: "choice name or id", Got: fmt.Sprintf("%T", value)}
		}

		choice, err := FindChoice(attr, key)
		if err != nil {
			return out, err
		}

		out.Value = strconv.Itoa(choice.ID)

		return out, nil
	}

	if t, ok := value.(time.Time); ok {
		out.Value = codec.Format(t)

		return out, nil
	}

	if IsDateAttribute(attr) {
		t, err := codec.Coerce(value)
		if err != nil {
			return out, &ValidationError{Entity: "custom attribute", Field: attr.Name, Rule: err.Error()}
		}

		out.Value = codec.Format(t)

		return out, nil
	}

	s, err := toString(value)
	if err != nil {
		return out, &ObjectTypeError{Expected: "scalar value", Got: fmt.Sprintf("%T", value)}
	}

	out.Value = s

	return out, nil
}

// MergeCustomAttributes overlays updates on current by attribute ID. Entries
// of current not named in updates are kept in order unless clear is set.
func MergeCustomAttributes(current, updates []CustomAttributeValue, clear bool) []CustomAttributeValue {
	out := make([]CustomAttributeValue, 0, len(current)+len(updates))
	seen := make(map[int]bool, len(updates))

	if !clear {
		byID := make(map[int]string, len(updates))
		for _, u := range updates {
			byID[u.ID] = u.Value
		}

		for _, c := range current {
			if v, ok := byID[c.ID]; ok {
				c.Value = v
				seen[c.ID] = true
			}

			out = append(out, c)
		}
	}

	for _, u := range updates {
		if !seen[u.ID] {
			out = append(out, u)
			seen[u.ID] = true
		}
	}

	return out
}

// CustomAttributeValues converts an entity's Attributes list to wire values.
// Items may be CustomAttributeValue, CustomAttribute or decoded JSON objects.
func CustomAttributeValues(items []interface{}) ([]CustomAttributeValue, error) {
	out := make([]CustomAttributeValue, 0, len(items))

	for _, item := range items {
		switch v := item.(type) {
		case CustomAttributeValue:
			out = append(out, v)
		case CustomAttribute:
			out = append(out, CustomAttributeValue{ID: v.ID, Value: v.Value})
		case map[string]interface{}:
			id, err := toInt(v["ID"])
			if err != nil {
				return nil, &ObjectTypeError{Expected: "custom attribute with integer ID", Got: fmt.Sprint(v["ID"])}
			}

			value := ""
			if raw, ok := v["Value"]; ok && raw != nil {
				value, _ = toString(raw)
			}

			out = append(out, CustomAttributeValue{ID: int(id), Value: value})
		default:
			return nil, &ObjectTypeError{Expected: "custom attribute", Got: fmt.Sprintf("%T", item)}
		}
	}

	return out, nil
}

// AttributeList converts wire values to the list form held by an entity.
func AttributeList(values []CustomAttributeValue) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, map[string]interface{}{"ID": v.ID, "Value": v.Value})
	}

	return out
}
