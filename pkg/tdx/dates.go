package tdx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidOffset = errors.New("invalid timezone offset")
)

const wireDateLayout = "2006-01-02T15:04:05"

// Layouts that carry their own zone.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	time.RFC1123,
	time.RFC1123Z,
}

// Layouts interpreted in the codec's offset.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	wireDateLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// DateCodec converts between time.Time and the service's wire date format,
// YYYY-MM-DDTHH:MM:SS followed by either a fixed offset such as -0500 or Z.
type DateCodec struct {
	offset string
	loc    *time.Location
}

// NewDateCodec builds a codec for offset. An empty offset or "Z" means UTC.
// Offsets may be written -0500, -05:00 or +0530.
func NewDateCodec(offset string) (*DateCodec, error) {
	normalized, loc, err := ParseOffset(offset)
	if err != nil {
		return nil, err
	}

	return &DateCodec{offset: normalized, loc: loc}, nil
}

// UTCDateCodec returns a codec that writes the Z suffix.
func UTCDateCodec() *DateCodec {
	return &DateCodec{offset: "Z", loc: time.UTC}
}

// ParseOffset validates a timezone offset and returns its canonical form.
func ParseOffset(offset string) (string, *time.Location, error) {
	offset = strings.TrimSpace(offset)
	if offset == "" || strings.EqualFold(offset, "Z") || strings.EqualFold(offset, "UTC") {
		return "Z", time.UTC, nil
	}

	compact := strings.ReplaceAll(offset, ":", "")
	if len(compact) != 5 || (compact[0] != '+' && compact[0] != '-') {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidOffset, offset)
	}

	hours, err := strconv.Atoi(compact[1:3])
	if err != nil || hours > 14 {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidOffset, offset)
	}

	minutes, err := strconv.Atoi(compact[3:5])
	if err != nil || minutes > 59 {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidOffset, offset)
	}

	seconds := hours*3600 + minutes*60
	if compact[0] == '-' {
		seconds = -seconds
	}

	return compact, time.FixedZone(compact, seconds), nil
}

// Offset returns the canonical offset suffix.
func (c *DateCodec) Offset() string {
	return c.offset
}

// Location returns the fixed zone used for naive dates.
func (c *DateCodec) Location() *time.Location {
	return c.loc
}

// Parse reads a date permissively. Values without a zone are interpreted in
// the codec's offset.
func (c *DateCodec) Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, c.loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// Format writes t in the wire format using the codec's offset.
func (c *DateCodec) Format(t time.Time) string {
	if c.offset == "Z" {
		return t.UTC().Format(wireDateLayout) + "Z"
	}

	return t.In(c.loc).Format(wireDateLayout) + c.offset
}

// Coerce accepts a time.Time or a parseable string and returns the time.
func (c *DateCodec) Coerce(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("%w: nil time", ErrInvalidDate)
		}

		return *v, nil
	case string:
		return c.Parse(v)
	default:
		return time.Time{}, fmt.Errorf("%w: %T", ErrInvalidDate, value)
	}
}
