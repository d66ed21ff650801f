package harness

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when rendering behaved as expected and every assertion held.
	Pass bool `json:"pass"`

	Scenario string `json:"scenario"`
	Dialect  string `json:"dialect"`

	// SQL is the rendered query; empty when rendering failed.
	SQL string `json:"sql,omitempty"`

	// ErrorKind is the bridge error kind when rendering failed.
	ErrorKind string `json:"error_kind,omitempty"`

	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows,omitempty"`

	// Errors lists failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(scenario, dialect string) *Result {
	return &Result{
		Pass:     true,
		Scenario: scenario,
		Dialect:  dialect,
		Errors:   []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// column returns the values of a result column.
func (r *Result) column(name string) ([]any, bool) {
	for i, c := range r.Columns {
		if c != name {
			continue
		}
		out := make([]any, len(r.Rows))
		for j, row := range r.Rows {
			out[j] = row[i]
		}
		return out, true
	}
	return nil, false
}
