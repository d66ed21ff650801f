package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/semsql/internal/ir"
)

// CycleWarning represents a cycle in the relation graph between models.
//
// Cycles are warnings, not errors, because they may be intentional:
//   - Self-joins such as employees.manager -> employees
//   - Bidirectional relations (orders -> customers -> orders)
//
// Queries only join relations of the root model, so a cycle never causes
// unbounded joins; it usually means a relation was declared on both sides.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["orders", "customers", "orders"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning" or "info"
}

// AnalyzeRelations performs static cycle analysis on model relations.
//
// The algorithm:
//  1. Build a model -> related model graph from every relation
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 as a warning and each self-relation as info
//
// A DAG (no cycles) returns an empty warning list. Relations to models
// outside the set are ignored; Validate reports those.
func AnalyzeRelations(models ir.Models) []CycleWarning {
	if len(models) == 0 {
		return []CycleWarning{}
	}

	graph := buildRelationGraph(models)
	sccs := tarjanSCC(graph)

	warnings := []CycleWarning{}
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	sort.Slice(warnings, func(i, j int) bool {
		return strings.Join(warnings[i].Path, ",") < strings.Join(warnings[j].Path, ",")
	})
	return warnings
}

// dependencyGraph maps model name -> related model names.
type dependencyGraph map[string][]string

// buildRelationGraph constructs the model relation graph. Neighbor lists are
// sorted and deduplicated so analysis is deterministic.
func buildRelationGraph(models ir.Models) dependencyGraph {
	graph := make(dependencyGraph, len(models))
	for name, m := range models {
		// Initialize with empty slice (ensures node exists in graph)
		if graph[name] == nil {
			graph[name] = []string{}
		}
		seen := make(map[string]bool)
		for _, r := range m.Relations {
			if _, ok := models[r.Model]; !ok || seen[r.Model] {
				continue
			}
			seen[r.Model] = true
			graph[name] = append(graph[name], r.Model)
		}
		sort.Strings(graph[name])
	}
	return graph
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph dependencyGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Returns a list of SCCs, where each SCC is a list of model names.
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(graph dependencyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		// Set the depth index for v
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		// Consider successors of v
		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				// Successor w has not yet been visited; recurse on it
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				// Successor w is on stack and hence in the current SCC
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// If v is a root node, pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	// Visit all nodes in name order
	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// cycleSCCToWarning converts an SCC to a CycleWarning.
//
// The path shows the cycle sequence by reconstructing a path through the SCC.
// For self-relations, the path is [model, model].
// For multi-node cycles, the path shows a cycle traversal.
func cycleSCCToWarning(scc []string, graph dependencyGraph) CycleWarning {
	if len(scc) == 1 {
		// Self-relation
		model := scc[0]
		return CycleWarning{
			Path:    []string{model, model},
			Message: fmt.Sprintf("Self-relation detected: %s → %s", model, model),
			Level:   "info",
		}
	}

	// Multi-node cycle - reconstruct a cycle path starting at the smallest name
	sort.Strings(scc)
	path := reconstructCyclePath(scc, graph)

	pathStr := strings.Join(path, " → ")
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("Relation cycle detected: %s", pathStr),
		Level:   "warning",
	}
}

// reconstructCyclePath builds a cycle path from an SCC.
//
// Strategy: Start at first node in SCC, follow edges to other SCC members,
// continue until we return to start node.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	// Build set of SCC members for fast lookup
	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	// Start at first node
	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	// Follow edges within SCC until we return to start
	for {
		visited[current] = true

		// Find next SCC member reachable from current
		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			// No more unvisited neighbors in SCC
			break
		}

		path = append(path, next)

		if next == start {
			// Completed the cycle
			break
		}

		current = next
	}

	return path
}
