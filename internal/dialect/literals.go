package dialect

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/semsql/internal/ir"
)

// Literals describes how a dialect spells constant values. Date, Time and
// Timestamp are fmt patterns applied to the quoted ISO text, e.g.
// "DATE %s" turns '2000-01-03' into DATE '2000-01-03'.
type Literals struct {
	True  string
	False string

	Date      string
	Time      string
	Timestamp string

	// LikeSpecial lists the characters escaped inside LIKE patterns.
	// The escape character is always a backslash.
	LikeSpecial string
}

func (l Literals) withDefaults() Literals {
	if l.True == "" {
		l.True = "TRUE"
	}
	if l.False == "" {
		l.False = "FALSE"
	}
	if l.Date == "" {
		l.Date = "DATE %s"
	}
	if l.Time == "" {
		l.Time = "TIME %s"
	}
	if l.Timestamp == "" {
		l.Timestamp = "TIMESTAMP %s"
	}
	if l.LikeSpecial == "" {
		l.LikeSpecial = `%_\`
	}
	return l
}

// QuoteString renders a string literal, doubling embedded single quotes.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Bool renders a boolean literal.
func (l Literals) Bool(v bool) string {
	if v {
		return l.True
	}
	return l.False
}

// escapeLike escapes the dialect's LIKE wildcards with a backslash.
func (l Literals) escapeLike(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune(l.LikeSpecial, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Accepted operand spellings. Timestamps without a zone are read as UTC;
// zoned timestamps are converted to UTC.
var (
	dateLayouts = []string{"2006-01-02"}
	timeLayouts = []string{"15:04:05.999999999", "15:04:05", "15:04"}
	tsLayouts   = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

func parseWithLayouts(s string, layouts []string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as ISO-8601", s)
}

// DateLiteral renders an ISO date operand as a dialect date literal.
func (l Literals) DateLiteral(iso string) (string, error) {
	t, err := parseWithLayouts(iso, dateLayouts)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(l.Date, QuoteString(t.Format("2006-01-02"))), nil
}

// TimeLiteral renders an ISO time-of-day operand as a dialect time literal.
func (l Literals) TimeLiteral(iso string) (string, error) {
	t, err := parseWithLayouts(iso, timeLayouts)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(l.Time, QuoteString(formatClock(t))), nil
}

// TimestampLiteral renders an ISO timestamp operand as a dialect timestamp
// literal in "YYYY-MM-DD HH:MM:SS[.ffffff]" form.
func (l Literals) TimestampLiteral(iso string) (string, error) {
	t, err := parseWithLayouts(iso, tsLayouts)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(l.Timestamp, QuoteString(t.Format("2006-01-02")+" "+formatClock(t))), nil
}

// formatClock prints HH:MM:SS with fractional seconds only when present.
func formatClock(t time.Time) string {
	if t.Nanosecond() == 0 {
		return t.Format("15:04:05")
	}
	return t.Format("15:04:05.999999")
}

// Literal renders a scalar value as a SQL constant of the given type, e.g.
// DATE '2000-01-03' or 1 for a true boolean. Strings are quoted and escaped.
func (b *Bridge) Literal(ft ir.FieldType, v ir.IRValue) (string, error) {
	if isNull(v) {
		return "NULL", nil
	}
	lit, err := b.literal(ft, v)
	if err != nil {
		return "", NewError(ErrUnsupportedType, b.def.Name, map[string]string{"field_type": ft.String()}, "%v", err)
	}
	return lit, nil
}

// literal renders a scalar operand for a field type, validating that the
// operand fits the type. Numbers keep their textual form.
func (b *Bridge) literal(ft ir.FieldType, v ir.IRValue) (string, error) {
	lit := b.def.Literals
	switch ft {
	case ir.TypeString:
		s, ok := v.(ir.IRString)
		if !ok {
			return "", fmt.Errorf("expected a string operand, got %s", describe(v))
		}
		return QuoteString(string(s)), nil
	case ir.TypeInteger, ir.TypeLong, ir.TypeDouble, ir.TypeDecimal:
		return numberLiteral(v)
	case ir.TypeBoolean:
		switch val := v.(type) {
		case ir.IRBool:
			return lit.Bool(bool(val)), nil
		case ir.IRString:
			switch strings.ToLower(string(val)) {
			case "true":
				return lit.True, nil
			case "false":
				return lit.False, nil
			}
		}
		return "", fmt.Errorf("expected a boolean operand, got %s", describe(v))
	case ir.TypeDate:
		s, ok := v.(ir.IRString)
		if !ok {
			return "", fmt.Errorf("expected an ISO-8601 date string, got %s", describe(v))
		}
		return lit.DateLiteral(string(s))
	case ir.TypeTime:
		s, ok := v.(ir.IRString)
		if !ok {
			return "", fmt.Errorf("expected an ISO-8601 time string, got %s", describe(v))
		}
		return lit.TimeLiteral(string(s))
	case ir.TypeTimestamp:
		s, ok := v.(ir.IRString)
		if !ok {
			return "", fmt.Errorf("expected an ISO-8601 timestamp string, got %s", describe(v))
		}
		return lit.TimestampLiteral(string(s))
	default:
		return "", fmt.Errorf("no literal syntax for %s", ft)
	}
}

func numberLiteral(v ir.IRValue) (string, error) {
	switch val := v.(type) {
	case ir.IRInt:
		return fmt.Sprintf("%d", int64(val)), nil
	case ir.IRNumber:
		n, err := ir.NewIRNumber(string(val))
		if err != nil {
			return "", err
		}
		return string(n), nil
	case ir.IRString:
		n, err := ir.NewIRNumber(string(val))
		if err != nil {
			return "", fmt.Errorf("expected a numeric operand, got %q", string(val))
		}
		return string(n), nil
	default:
		return "", fmt.Errorf("expected a numeric operand, got %s", describe(v))
	}
}

func describe(v ir.IRValue) string {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return "no value"
	case ir.IRString:
		return fmt.Sprintf("string %q", string(val))
	case ir.IRInt:
		return fmt.Sprintf("integer %d", int64(val))
	case ir.IRNumber:
		return "number " + string(val)
	case ir.IRBool:
		return fmt.Sprintf("boolean %t", bool(val))
	case ir.IRArray:
		return fmt.Sprintf("list of %d values", len(val))
	case ir.IRObject:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
