package promptgraph

import (
	"github.com/rmckinnon/promptgraph/pkg/promptgraph/expr"
)

// Rule pairs a routing condition with a target node. When is an expr
// condition ("classification contains 'factual'"); an empty When matches
// unconditionally, which makes it useful as an explicit final rule.
type Rule struct {
	When string
	To   string
}

// RouterFromRules builds a RouterFunc from an ordered rule list. The project
// function flattens the state into the variables the conditions reference.
// Rules are evaluated top to bottom and the first match wins; if nothing
// matches, fallback is returned (typically END, for inputs the rules don't
// recognize).
//
// Example:
//
//	router := promptgraph.RouterFromRules(
//	    func(s AppState) map[string]any {
//	        return map[string]any{"classification": s.Classification}
//	    },
//	    []promptgraph.Rule{
//	        {When: "classification contains 'tool_use'", To: "tool_use"},
//	        {When: "classification contains 'factual'", To: "factual_answer"},
//	        {When: "classification contains 'creative'", To: "creative_response"},
//	    },
//	    promptgraph.END,
//	)
func RouterFromRules[S any](project func(S) map[string]any, rules []Rule, fallback string) RouterFunc[S] {
	ev := expr.New()

	return func(ctx Context, state S) string {
		vars := project(state)

		for _, rule := range rules {
			if rule.When == "" {
				return rule.To
			}
			matched, err := ev.Evaluate(rule.When, vars)
			if err != nil {
				ctx.Logger().Warn("routing rule failed to evaluate",
					"condition", rule.When, "error", err)
				continue
			}
			if matched {
				return rule.To
			}
		}

		ctx.Logger().Debug("no routing rule matched, using fallback",
			"fallback", fallback)
		return fallback
	}
}
