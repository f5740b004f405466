package promptgraph

import (
	"fmt"
	"strings"
	"sync"
)

// Graph is a mutable builder for routing graphs. Add nodes and edges, set an
// entry point, then call Compile to get an immutable CompiledGraph that can
// be shared across runs.
//
// The builder is not meant for concurrent construction; build the graph from
// one goroutine and share only the compiled form.
//
// Example:
//
//	g := promptgraph.NewGraph[QAState]().
//	    AddNode("classify", classify).
//	    AddNode("answer", answer).
//	    AddEdge("classify", "answer").
//	    AddEdge("answer", promptgraph.END).
//	    SetEntry("classify")
//
//	compiled, err := g.Compile()
type Graph[S any] struct {
	mu               sync.RWMutex
	nodes            map[string]NodeFunc[S]
	edges            map[string][]string
	conditionalEdges map[string]RouterFunc[S]
	entryPoint       string
}

// NewGraph creates an empty graph builder for state type S.
func NewGraph[S any]() *Graph[S] {
	return &Graph[S]{
		nodes:            make(map[string]NodeFunc[S]),
		edges:            make(map[string][]string),
		conditionalEdges: make(map[string]RouterFunc[S]),
	}
}

// AddNode registers a named node. Returns the graph for chaining.
//
// Panics on builder misuse: empty ID, the reserved END name, IDs containing
// whitespace, nil functions, or duplicate IDs. These are programming errors,
// not runtime conditions.
func (g *Graph[S]) AddNode(id string, fn NodeFunc[S]) *Graph[S] {
	if id == "" {
		panic("promptgraph: node ID cannot be empty")
	}
	if lower := strings.ToLower(id); lower == "end" || lower == "__end__" {
		panic("promptgraph: node ID cannot be reserved word 'END'")
	}
	if strings.ContainsAny(id, " \t\n\r") {
		panic("promptgraph: node ID cannot contain whitespace")
	}
	if fn == nil {
		panic("promptgraph: node function cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; exists {
		panic(fmt.Sprintf("promptgraph: duplicate node ID: %s", id))
	}

	g.nodes[id] = fn
	return g
}

// AddEdge adds an unconditional edge. The target may be a node ID or END.
// Endpoint validation is deferred to Compile so edges can be added in any
// order. Returns the graph for chaining.
func (g *Graph[S]) AddEdge(from, to string) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.edges[from] = append(g.edges[from], to)
	return g
}

// AddConditionalEdge attaches a router to a node. At runtime the router
// inspects state and returns the next node ID (or END).
//
// A node with both a router and simple edges uses the router; the simple
// edges are ignored. Returns the graph for chaining.
func (g *Graph[S]) AddConditionalEdge(from string, router RouterFunc[S]) *Graph[S] {
	if router == nil {
		panic("promptgraph: router function cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.conditionalEdges[from] = router
	return g
}

// SetEntry designates the node where runs begin. Validated at Compile.
// Returns the graph for chaining.
func (g *Graph[S]) SetEntry(id string) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.entryPoint = id
	return g
}
