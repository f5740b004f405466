/*
Package promptgraph routes questions through language-model modules with a
typed state graph.

# Overview

promptgraph is a Go library for wiring LM modules (classification,
chain-of-thought answering, tool-using ReAct reasoning) into a directed
routing graph. Nodes do the work, edges define flow, and a shared state value
of your choosing travels between them.

The design follows the LangGraph/DSPy combination but is built for Go:
  - Type-safe generic state, no map-of-any juggling
  - Structural validation at Compile time
  - A bounded execution loop with typed errors instead of exceptions
  - Checkpointing for crash recovery
  - slog logging and OpenTelemetry metrics/tracing

# Basic Usage

	type QAState struct {
	    Question string
	    Answer   string
	}

	func answer(ctx promptgraph.Context, s QAState) (QAState, error) {
	    resp, err := ctx.LLM().Complete(ctx, llm.CompletionRequest{
	        Messages: []llm.Message{{Role: llm.RoleUser, Content: s.Question}},
	    })
	    if err != nil {
	        return s, err
	    }
	    s.Answer = resp.Content
	    return s, nil
	}

	g := promptgraph.NewGraph[QAState]().
	    AddNode("answer", answer).
	    AddEdge("answer", promptgraph.END).
	    SetEntry("answer")

	compiled, err := g.Compile()
	if err != nil {
	    log.Fatal(err)
	}

	ctx := promptgraph.NewContext(context.Background(),
	    promptgraph.WithLLM(client))
	result, err := compiled.Run(ctx, QAState{Question: "What is Go?"})

# Conditional Routing

Decision points use conditional edges. The router inspects state and names
the next node:

	g.AddConditionalEdge("classify", func(ctx promptgraph.Context, s AppState) string {
	    switch {
	    case strings.Contains(s.Classification, "tool_use"):
	        return "tool_use"
	    case strings.Contains(s.Classification, "factual"):
	        return "factual_answer"
	    default:
	        return promptgraph.END
	    }
	})

RouterFromRules builds the same thing declaratively from expr conditions;
see route.go.

# Loops

A router that returns an earlier node creates a loop, which is how the ReAct
reason/act cycle is expressed. Every run is bounded by a max-iterations cap
(default 1000, WithMaxIterations to change), so a routing loop that never
reaches END terminates with MaxIterationsError.

# LM Modules

The module subpackage provides the DSPy-style building blocks: Signature
(typed prompt contract), Predict, ChainOfThought, and ReAct. The optimize
subpackage compiles a module against a trainset, bootstrapping few-shot
demos that are saved to a JSON artifact and loaded back at startup.

# Checkpointing

	store, err := checkpoint.NewSQLiteStore("./checkpoints.db")
	defer store.Close()

	result, err := compiled.Run(ctx, state,
	    promptgraph.WithCheckpointing(store, "run-123"))

	// After a crash:
	result, err = compiled.Resume(ctx, store, "run-123")

A checkpoint is written after each successful node; Resume continues from
the recorded next node.

# Thread Safety

  - Graph[S] is a single-goroutine builder
  - CompiledGraph[S] is immutable and safe to share
  - Context and the checkpoint stores are safe for concurrent use

# Subpackages

  - module: Signature/Predict/ChainOfThought/ReAct LM modules
  - optimize: few-shot bootstrap compilation
  - tool: tools for the ReAct loop (calculator, search)
  - llm: LLM client interface, OpenAI-compatible and mock implementations
  - checkpoint: checkpoint storage (memory, SQLite)
  - observability: logging, metrics, and tracing helpers
  - config: file-based configuration
  - expr, template, registry: condition evaluation, prompt variable
    expansion, and generic registries used by the layers above
*/
package promptgraph
