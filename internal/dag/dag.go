// Package dag provides a directed graph of alias dependencies between variables.
// An edge runs from a target variable to every alias that points at it, so
// downstream nodes are the variables whose resolved value depends on it.
// Alias data from Figma is not guaranteed acyclic; cycles are reported, not rejected.
package dag

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Node represents a node in the graph.
type Node struct {
	// ID is the unique identifier (file-qualified variable id)
	ID string
	// Data holds arbitrary node data
	Data any
}

// Graph is a directed graph that tolerates cycles and self-loops.
type Graph struct {
	nodes   map[string]*Node
	edges   map[string][]string // target -> aliases (dependents)
	parents map[string][]string // alias -> targets (dependencies)
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// AddNode adds a node to the graph.
func (g *Graph) AddNode(id string, data any) {
	if _, exists := g.nodes[id]; !exists {
		g.nodes[id] = &Node{ID: id, Data: data}
		g.edges[id] = []string{}
		g.parents[id] = []string{}
	} else {
		// Update data if node already exists
		g.nodes[id].Data = data
	}
}

// AddEdge adds a directed edge from parent to child (child aliases parent).
func (g *Graph) AddEdge(parentID, childID string) error {
	if _, exists := g.nodes[parentID]; !exists {
		return fmt.Errorf("parent node %q does not exist", parentID)
	}
	if _, exists := g.nodes[childID]; !exists {
		return fmt.Errorf("child node %q does not exist", childID)
	}

	if !slices.Contains(g.edges[parentID], childID) {
		g.edges[parentID] = append(g.edges[parentID], childID)
	}
	if !slices.Contains(g.parents[childID], parentID) {
		g.parents[childID] = append(g.parents[childID], parentID)
	}

	return nil
}

// GetNode returns a node by ID.
func (g *Graph) GetNode(id string) (*Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// GetParents returns the variables the node aliases.
func (g *Graph) GetParents(id string) []string {
	return g.parents[id]
}

// GetChildren returns the aliases pointing at the node.
func (g *Graph) GetChildren(id string) []string {
	return g.edges[id]
}

// GetAllNodes returns all nodes sorted by ID.
func (g *Graph) GetAllNodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})
	return nodes
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

// HasCycle returns true if the graph contains a cycle, along with one cycle path.
func (g *Graph) HasCycle() (bool, []string) {
	cycles := g.Cycles()
	if len(cycles) == 0 {
		return false, nil
	}
	return true, cycles[0]
}

// Cycles returns one path per back edge found by a depth-first search in
// sorted node order. Each path starts and ends with the same node. Cycles
// are deduplicated by rotation.
func (g *Graph) Cycles() [][]string {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string) // Track the path for error reporting
	seen := make(map[string]bool)

	var cycles [][]string

	var dfs func(id string)
	dfs = func(id string) {
		visited[id] = true
		recStack[id] = true

		children := slices.Clone(g.edges[id])
		sort.Strings(children)
		for _, childID := range children {
			if !visited[childID] {
				path[childID] = id
				dfs(childID)
			} else if recStack[childID] {
				cyclePath := []string{id}
				for curr := id; curr != childID; {
					curr = path[curr]
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append(cyclePath, childID)
				if key := cycleKey(cyclePath); !seen[key] {
					seen[key] = true
					cycles = append(cycles, cyclePath)
				}
			}
		}

		recStack[id] = false
	}

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if !visited[id] {
			dfs(id)
		}
	}

	return cycles
}

// cycleKey normalizes a closed path to start at its smallest member.
func cycleKey(cycle []string) string {
	open := cycle[:len(cycle)-1]
	start := 0
	for i, id := range open {
		if id < open[start] {
			start = i
		}
	}
	rotated := append(slices.Clone(open[start:]), open[:start]...)
	return strings.Join(rotated, "\x00")
}

// GetAffectedNodes returns all nodes affected by changes to the given nodes.
// This includes the changed nodes and every alias that transitively points at them.
func (g *Graph) GetAffectedNodes(changedIDs []string) []string {
	affected := make(map[string]bool)

	var markAffected func(id string)
	markAffected = func(id string) {
		if affected[id] {
			return
		}
		affected[id] = true

		for _, childID := range g.edges[id] {
			markAffected(childID)
		}
	}

	for _, id := range changedIDs {
		if _, exists := g.nodes[id]; exists {
			markAffected(id)
		}
	}

	result := make([]string, 0, len(affected))
	for id := range affected {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

// GetUpstreamNodes returns every node the given node transitively aliases.
func (g *Graph) GetUpstreamNodes(id string) []string {
	upstream := make(map[string]bool)

	var markUpstream func(nodeID string)
	markUpstream = func(nodeID string) {
		for _, parentID := range g.parents[nodeID] {
			if !upstream[parentID] {
				upstream[parentID] = true
				markUpstream(parentID)
			}
		}
	}

	markUpstream(id)

	result := make([]string, 0, len(upstream))
	for nodeID := range upstream {
		result = append(result, nodeID)
	}
	sort.Strings(result)
	return result
}
