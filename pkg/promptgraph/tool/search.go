package tool

import (
	"context"
	"fmt"
	"strings"
)

// Search is a knowledge-base lookup tool. It matches queries against entry
// keys by substring, falling back to single-word matches for words long
// enough to carry meaning. Unknown queries return a generic result rather
// than an error, matching how a real search behaves.
type Search struct {
	entries map[string]string
}

// defaultKnowledgeBase seeds a Search created without entries.
var defaultKnowledgeBase = map[string]string{
	"capital of france":       "Paris is the capital of France.",
	"population of tokyo":     "Tokyo has a population of approximately 14 million people in the city proper and 38 million in the greater metropolitan area.",
	"height of mount everest": "Mount Everest is 8,848.86 meters (29,031.7 feet) tall.",
	"speed of light":          "The speed of light in a vacuum is approximately 299,792,458 meters per second.",
	"python programming":      "Python is a high-level, interpreted programming language known for its simplicity and readability.",
	"artificial intelligence": "Artificial Intelligence (AI) is the simulation of human intelligence in machines that are programmed to think and learn.",
	"climate change":          "Climate change refers to long-term shifts in global temperatures and weather patterns, primarily caused by human activities.",
	"quantum physics":         "Quantum physics is the branch of physics that studies matter and energy at the smallest scales, typically atoms and subatomic particles.",
}

// NewSearch creates a search tool over the given entries, keyed by
// lowercase phrase. With no entries it uses a small built-in knowledge
// base, which is enough for demos and tests.
func NewSearch(entries map[string]string) *Search {
	if entries == nil {
		entries = defaultKnowledgeBase
	}
	normalized := make(map[string]string, len(entries))
	for k, v := range entries {
		normalized[strings.ToLower(k)] = v
	}
	return &Search{entries: normalized}
}

func (s *Search) Name() string { return "search" }

func (s *Search) Description() string {
	return "Searches for information on the internet. Provide a search query as input."
}

// Execute implements Tool.
func (s *Search) Execute(_ context.Context, query string) (string, error) {
	queryLower := strings.ToLower(strings.TrimSpace(query))

	if result, ok := s.entries[queryLower]; ok {
		return result, nil
	}
	for key, result := range s.entries {
		if strings.Contains(queryLower, key) {
			return result, nil
		}
	}
	// Word-level fallback. Short words like "of" match everything, so
	// only words of four or more characters count.
	for key, result := range s.entries {
		for _, word := range strings.Fields(key) {
			if len(word) >= 4 && strings.Contains(queryLower, word) {
				return result, nil
			}
		}
	}

	return fmt.Sprintf("I found some general information about %q, but I don't have specific details in my knowledge base.", query), nil
}
