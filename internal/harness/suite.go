package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
// Scenario names must be unique.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	seen := make(map[string]string, len(paths))
	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%s: scenario %q already defined in %s", path, s.Name, prev)
		}
		seen[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// SuiteResult aggregates the results of several scenarios.
type SuiteResult struct {
	Results []*Result `json:"results"`
	Passed  int       `json:"passed"`
	Failed  int       `json:"failed"`
}

// Pass reports whether every scenario passed.
func (s *SuiteResult) Pass() bool { return s.Failed == 0 }

// Summary is a one-line description of the suite outcome.
func (s *SuiteResult) Summary() string {
	if s.Pass() {
		return fmt.Sprintf("%d scenarios passed", s.Passed)
	}
	var names []string
	for _, r := range s.Results {
		if !r.Pass {
			names = append(names, r.Scenario)
		}
	}
	return fmt.Sprintf("%d passed, %d failed: %s", s.Passed, s.Failed, strings.Join(names, ", "))
}

// RunAll runs scenarios in order. It stops only on errors that prevent a
// scenario from running.
func (h *Harness) RunAll(ctx context.Context, scenarios []*Scenario) (*SuiteResult, error) {
	suite := &SuiteResult{Results: make([]*Result, 0, len(scenarios))}
	for _, s := range scenarios {
		result, err := h.Run(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		suite.Results = append(suite.Results, result)
		if result.Pass {
			suite.Passed++
		} else {
			suite.Failed++
		}
	}
	return suite, nil
}
