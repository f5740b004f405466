package promptgraph

import (
	"errors"
	"fmt"
	"log/slog"
)

// Compile validates the graph and produces an executable CompiledGraph.
// All validation problems are reported together via errors.Join.
//
// Checks, in order:
//  1. an entry point is set
//  2. the entry point names an existing node
//  3. every simple edge source exists (or has only a conditional edge)
//  4. every simple edge target exists or is END
//  5. every conditional edge source exists
//  6. END is reachable from the entry point
//
// Nodes unreachable from the entry are logged as warnings but do not fail
// compilation; routers can target any node at runtime.
func (g *Graph[S]) Compile() (*CompiledGraph[S], error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var errs []error

	if g.entryPoint == "" {
		errs = append(errs, ErrNoEntryPoint)
	} else if _, ok := g.nodes[g.entryPoint]; !ok {
		errs = append(errs, fmt.Errorf("%w: %s", ErrEntryNotFound, g.entryPoint))
	}

	for from, targets := range g.edges {
		if from != END {
			if _, ok := g.nodes[from]; !ok {
				if _, hasRouter := g.conditionalEdges[from]; !hasRouter {
					errs = append(errs, fmt.Errorf("%w: edge source '%s' does not exist", ErrNodeNotFound, from))
				}
			}
		}
		for _, to := range targets {
			if to != END {
				if _, ok := g.nodes[to]; !ok {
					errs = append(errs, fmt.Errorf("%w: edge target '%s' does not exist", ErrNodeNotFound, to))
				}
			}
		}
	}

	for from := range g.conditionalEdges {
		if _, ok := g.nodes[from]; !ok {
			errs = append(errs, fmt.Errorf("%w: conditional edge source '%s' does not exist", ErrNodeNotFound, from))
		}
	}

	if g.entryPoint != "" {
		if _, ok := g.nodes[g.entryPoint]; ok && !g.hasPathToEnd() {
			errs = append(errs, ErrNoPathToEnd)
		}
	}

	g.warnUnreachable()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return g.build(), nil
}

// hasPathToEnd runs a reverse reachability pass from END. A node with a
// router is assumed to be able to reach END, since the router may return it.
func (g *Graph[S]) hasPathToEnd() bool {
	canReach := map[string]bool{END: true}

	for changed := true; changed; {
		changed = false

		for from, targets := range g.edges {
			if canReach[from] {
				continue
			}
			for _, to := range targets {
				if canReach[to] {
					canReach[from] = true
					changed = true
					break
				}
			}
		}

		for from := range g.conditionalEdges {
			if !canReach[from] {
				canReach[from] = true
				changed = true
			}
		}
	}

	return canReach[g.entryPoint]
}

// warnUnreachable logs nodes that no path from the entry can visit.
func (g *Graph[S]) warnUnreachable() {
	if g.entryPoint == "" {
		return
	}

	reachable := g.reachableFromEntry()
	for id := range g.nodes {
		if !reachable[id] {
			slog.Warn("node is unreachable from entry", "node_id", id)
		}
	}
}

// reachableFromEntry is a forward BFS from the entry point. Router targets
// are unknown until runtime, so a node with a conditional edge marks every
// node reachable.
func (g *Graph[S]) reachableFromEntry() map[string]bool {
	reachable := make(map[string]bool)
	if g.entryPoint == "" {
		return reachable
	}

	queue := []string{g.entryPoint}
	reachable[g.entryPoint] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, to := range g.edges[current] {
			if to != END && !reachable[to] {
				reachable[to] = true
				queue = append(queue, to)
			}
		}

		if _, hasRouter := g.conditionalEdges[current]; hasRouter {
			for id := range g.nodes {
				if !reachable[id] {
					reachable[id] = true
					queue = append(queue, id)
				}
			}
		}
	}

	return reachable
}

// build snapshots the builder into an immutable CompiledGraph.
func (g *Graph[S]) build() *CompiledGraph[S] {
	nodes := make(map[string]NodeFunc[S], len(g.nodes))
	for id, fn := range g.nodes {
		nodes[id] = fn
	}

	edges := make(map[string][]string, len(g.edges))
	for from, targets := range g.edges {
		edges[from] = append([]string(nil), targets...)
	}

	routers := make(map[string]RouterFunc[S], len(g.conditionalEdges))
	for from, r := range g.conditionalEdges {
		routers[from] = r
	}

	predecessors := make(map[string][]string)
	for from, targets := range edges {
		for _, to := range targets {
			if to != END {
				predecessors[to] = append(predecessors[to], from)
			}
		}
	}

	isConditional := make(map[string]bool, len(routers))
	for from := range routers {
		isConditional[from] = true
	}

	return &CompiledGraph[S]{
		nodes:            nodes,
		edges:            edges,
		conditionalEdges: routers,
		entryPoint:       g.entryPoint,
		predecessors:     predecessors,
		isConditional:    isConditional,
	}
}
