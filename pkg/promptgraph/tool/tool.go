// Package tool defines the tool interface used by the ReAct loop, a
// registry-backed tool set, and two built-in tools: an arithmetic
// calculator and a knowledge-base search.
package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/rmckinnon/promptgraph/pkg/promptgraph/registry"
)

// Tool is a named capability the model can invoke with a free-form string
// input. Execute returns the observation text fed back to the model; an
// error becomes an error observation, not a run failure.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, input string) (string, error)
}

// Set is a registry of tools keyed by lowercase name, preserving
// registration order for prompt rendering.
type Set struct {
	reg   *registry.Registry[string, Tool]
	order []string
}

// NewSet creates a set holding the given tools.
func NewSet(tools ...Tool) *Set {
	s := &Set{reg: registry.New[string, Tool]()}
	for _, t := range tools {
		s.Register(t)
	}
	return s
}

// Register adds a tool. Re-registering a name replaces the tool but keeps
// its original position.
func (s *Set) Register(t Tool) {
	name := strings.ToLower(t.Name())
	if !s.reg.Has(name) {
		s.order = append(s.order, name)
	}
	s.reg.Register(name, t)
}

// Get looks up a tool by name, case-insensitively.
func (s *Set) Get(name string) (Tool, bool) {
	return s.reg.Get(strings.ToLower(strings.TrimSpace(name)))
}

// Names returns tool names in registration order.
func (s *Set) Names() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of registered tools.
func (s *Set) Len() int {
	return s.reg.Len()
}

// Execute runs the named tool. An unknown name returns an error listing
// the available tools, so the model can correct itself on the next step.
func (s *Set) Execute(ctx context.Context, name, input string) (string, error) {
	t, ok := s.Get(name)
	if !ok {
		return "", fmt.Errorf("unknown tool %q, available tools: %s",
			name, strings.Join(s.Names(), ", "))
	}
	return t.Execute(ctx, input)
}
