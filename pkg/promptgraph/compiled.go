package promptgraph

// CompiledGraph is the immutable, executable form of a Graph. It is safe for
// concurrent use: a single compiled graph can serve many Run calls.
//
// The introspection methods expose the structure for debugging and for
// rendering a textual view of the workflow.
type CompiledGraph[S any] struct {
	nodes            map[string]NodeFunc[S]
	edges            map[string][]string
	conditionalEdges map[string]RouterFunc[S]
	entryPoint       string

	predecessors  map[string][]string
	isConditional map[string]bool
}

// EntryPoint returns the entry node ID.
func (cg *CompiledGraph[S]) EntryPoint() string { return cg.entryPoint }

// NodeIDs returns every node identifier, in no particular order.
func (cg *CompiledGraph[S]) NodeIDs() []string {
	ids := make([]string, 0, len(cg.nodes))
	for id := range cg.nodes {
		ids = append(ids, id)
	}
	return ids
}

// HasNode reports whether the graph contains the node.
func (cg *CompiledGraph[S]) HasNode(id string) bool {
	_, ok := cg.nodes[id]
	return ok
}

// Successors returns the simple-edge targets of a node. Router targets are
// runtime-determined and not included. Returns nil for END or unknown IDs.
func (cg *CompiledGraph[S]) Successors(id string) []string {
	if id == END {
		return nil
	}
	return cg.edges[id]
}

// Predecessors returns the nodes with simple edges into the given node.
func (cg *CompiledGraph[S]) Predecessors(id string) []string {
	return cg.predecessors[id]
}

// IsConditional reports whether the node routes via a RouterFunc.
func (cg *CompiledGraph[S]) IsConditional(id string) bool {
	return cg.isConditional[id]
}

// getNode is the executor's node lookup.
func (cg *CompiledGraph[S]) getNode(id string) (NodeFunc[S], bool) {
	fn, ok := cg.nodes[id]
	return fn, ok
}

// getRouter is the executor's router lookup.
func (cg *CompiledGraph[S]) getRouter(id string) (RouterFunc[S], bool) {
	r, ok := cg.conditionalEdges[id]
	return r, ok
}
