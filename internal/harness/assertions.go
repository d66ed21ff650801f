package harness

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// AssertionError is returned when an assertion fails.
// It includes the rendered SQL to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	SQL      string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.SQL != "" {
		fmt.Fprintf(&buf, "\nSQL:\n%s\n", e.SQL)
	}
	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string
	for i, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertColumnValues:
			err = assertColumnValues(result, assertion)
		case AssertRowCount:
			err = assertRowCount(result, assertion)
		case AssertSQLContains:
			err = assertSQLContains(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}
		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}

func assertColumnValues(result *Result, a Assertion) error {
	actual, ok := result.column(a.Column)
	if !ok {
		return &AssertionError{
			Type:     AssertColumnValues,
			Expected: fmt.Sprintf("column %q", a.Column),
			Actual:   fmt.Sprintf("columns %v", result.Columns),
			SQL:      result.SQL,
		}
	}

	want := make([]string, len(a.Values))
	for i, v := range a.Values {
		want[i] = formatValue(v)
	}
	got := make([]string, len(actual))
	for i, v := range actual {
		got[i] = formatValue(v)
	}
	if !a.Ordered {
		slices.Sort(want)
		slices.Sort(got)
	}
	if !slices.Equal(want, got) {
		return &AssertionError{
			Type:     AssertColumnValues,
			Expected: fmt.Sprintf("%s = %v", a.Column, want),
			Actual:   fmt.Sprintf("%s = %v", a.Column, got),
			SQL:      result.SQL,
		}
	}
	return nil
}

func assertRowCount(result *Result, a Assertion) error {
	if len(result.Rows) != a.Count {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("%d rows", a.Count),
			Actual:   fmt.Sprintf("%d rows", len(result.Rows)),
			SQL:      result.SQL,
		}
	}
	return nil
}

func assertSQLContains(result *Result, a Assertion) error {
	if !strings.Contains(result.SQL, a.Text) {
		return &AssertionError{
			Type:     AssertSQLContains,
			Expected: fmt.Sprintf("SQL containing %q", a.Text),
			Actual:   "no match",
			SQL:      result.SQL,
		}
	}
	return nil
}

// formatValue renders expected and actual values in one comparable form.
// Drivers disagree on representation: SQLite returns booleans and integers
// as int64 and dates as time.Time or text depending on the column type.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		val = val.UTC()
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
