package promptgraph

// END is the terminal routing target. Edges and routers that return END
// stop the traversal.
const END = "__end__"

// NodeFunc is the function signature for graph nodes. A node receives the
// execution context and the current state value and returns the next state.
//
// State travels by value. A node that wants to change the state modifies its
// copy and returns it; returning an error aborts the run with the state as it
// was when the node failed.
type NodeFunc[S any] func(ctx Context, state S) (S, error)

// RouterFunc picks the next node for a conditional edge based on state.
// It must return an existing node ID or END; anything else fails the run
// with a RouterError.
type RouterFunc[S any] func(ctx Context, state S) string
