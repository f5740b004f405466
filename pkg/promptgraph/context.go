package promptgraph

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rmckinnon/promptgraph/pkg/promptgraph/checkpoint"
	"github.com/rmckinnon/promptgraph/pkg/promptgraph/llm"
)

// Context is the execution context handed to nodes and routers. It extends
// context.Context with the services a node needs (logger, LLM client,
// checkpoint store) and per-run metadata.
//
// Contexts are immutable; the executor derives a fresh context per node with
// the node ID set and the logger enriched.
type Context interface {
	context.Context

	// Logger returns the run logger, enriched with run_id, node_id, and
	// attempt during node execution. Never nil; defaults to slog.Default().
	Logger() *slog.Logger

	// LLM returns the configured LLM client, or nil. Nodes that need a
	// client must check for nil.
	LLM() llm.Client

	// Checkpointer returns the checkpoint store, or nil.
	Checkpointer() checkpoint.Store

	// RunID identifies this execution. Auto-generated when not configured.
	RunID() string

	// NodeID is the node currently executing, empty before the first node.
	NodeID() string

	// Attempt is the retry attempt number, starting at 1.
	Attempt() int

	// ReportTokenUsage attributes the token cost of an LLM call to the
	// node currently executing. Inside a run the usage is logged and, with
	// WithMetrics, recorded; outside a run it is a no-op.
	ReportTokenUsage(usage llm.TokenUsage)
}

type executionContext struct {
	context.Context

	logger       *slog.Logger
	llmClient    llm.Client
	checkpointer checkpoint.Store
	runID        string
	nodeID       string
	attempt      int

	// usageSink is installed by the executor for the duration of a node
	// so reported token usage reaches the run's logger and recorder.
	usageSink func(nodeID string, usage llm.TokenUsage)
}

func (c *executionContext) Logger() *slog.Logger            { return c.logger }
func (c *executionContext) LLM() llm.Client                 { return c.llmClient }
func (c *executionContext) Checkpointer() checkpoint.Store  { return c.checkpointer }
func (c *executionContext) RunID() string                   { return c.runID }
func (c *executionContext) NodeID() string                  { return c.nodeID }
func (c *executionContext) Attempt() int                    { return c.attempt }

func (c *executionContext) ReportTokenUsage(usage llm.TokenUsage) {
	if c.usageSink != nil {
		c.usageSink(c.nodeID, usage)
	}
}

// ContextOption configures a Context created by NewContext.
type ContextOption func(*executionContext)

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *executionContext) {
		c.logger = logger
	}
}

// WithLLM sets the LLM client available to nodes via ctx.LLM().
func WithLLM(client llm.Client) ContextOption {
	return func(c *executionContext) {
		c.llmClient = client
	}
}

// WithCheckpointer sets the checkpoint store available to nodes.
func WithCheckpointer(store checkpoint.Store) ContextOption {
	return func(c *executionContext) {
		c.checkpointer = store
	}
}

// WithContextRunID sets the run identifier used for logging and tracing.
// Checkpointed runs set the run ID with the WithCheckpointing RunOption.
func WithContextRunID(id string) ContextOption {
	return func(c *executionContext) {
		c.runID = id
	}
}

// NewContext wraps a standard context with promptgraph services.
//
// Example:
//
//	ctx := promptgraph.NewContext(context.Background(),
//	    promptgraph.WithLogger(logger),
//	    promptgraph.WithLLM(client))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	ec := &executionContext{
		Context: ctx,
		logger:  slog.Default(),
		runID:   uuid.New().String(),
		attempt: 1,
	}

	for _, opt := range opts {
		opt(ec)
	}

	return ec
}

// withNodeID derives a per-node context with an enriched logger.
func (c *executionContext) withNodeID(nodeID string) *executionContext {
	return &executionContext{
		Context:      c.Context,
		logger:       c.logger.With("run_id", c.runID, "node_id", nodeID, "attempt", c.attempt),
		llmClient:    c.llmClient,
		checkpointer: c.checkpointer,
		runID:        c.runID,
		nodeID:       nodeID,
		attempt:      c.attempt,
		usageSink:    c.usageSink,
	}
}
