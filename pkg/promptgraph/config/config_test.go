package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testConfig() Config {
	return New(map[string]any{
		"name":        "promptgraph",
		"debug":       true,
		"max_steps":   5,
		"temperature": 0.7,
		"timeout":     "90s",
		"interval":    30,
		"tags":        []any{"a", "b"},
		"mixed":       []any{"a", 1},
		"llm": map[string]any{
			"model": "deepseek-chat",
		},
	})
}

// TestConfig_String tests string access with defaults.
func TestConfig_String(t *testing.T) {
	c := testConfig()
	assert.Equal(t, "promptgraph", c.String("name", "fallback"))
	assert.Equal(t, "fallback", c.String("missing", "fallback"))
	assert.Equal(t, "fallback", c.String("debug", "fallback")) // wrong type
}

// TestConfig_Bool tests boolean access.
func TestConfig_Bool(t *testing.T) {
	c := testConfig()
	assert.True(t, c.Bool("debug", false))
	assert.True(t, c.Bool("missing", true))
	assert.False(t, c.Bool("name", false))
}

// TestConfig_Int tests integer access, including JSON's float64 numbers.
func TestConfig_Int(t *testing.T) {
	c := New(map[string]any{
		"as_int":     5,
		"as_float":   float64(7),
		"fractional": 7.5,
	})
	assert.Equal(t, 5, c.Int("as_int", 0))
	assert.Equal(t, 7, c.Int("as_float", 0))
	assert.Equal(t, 99, c.Int("fractional", 99))
	assert.Equal(t, 99, c.Int("missing", 99))
}

// TestConfig_Float tests float access with integer widening.
func TestConfig_Float(t *testing.T) {
	c := testConfig()
	assert.Equal(t, 0.7, c.Float("temperature", 0))
	assert.Equal(t, 5.0, c.Float("max_steps", 0))
	assert.Equal(t, 1.5, c.Float("missing", 1.5))
}

// TestConfig_Duration tests duration parsing from strings and numbers.
func TestConfig_Duration(t *testing.T) {
	c := testConfig()
	assert.Equal(t, 90*time.Second, c.Duration("timeout", 0))
	assert.Equal(t, 30*time.Second, c.Duration("interval", 0))
	assert.Equal(t, time.Minute, c.Duration("missing", time.Minute))
	assert.Equal(t, time.Minute, c.Duration("name", time.Minute))
}

// TestConfig_StringSlice tests slice access.
func TestConfig_StringSlice(t *testing.T) {
	c := testConfig()
	assert.Equal(t, []string{"a", "b"}, c.StringSlice("tags", nil))
	assert.Equal(t, []string{"x"}, c.StringSlice("missing", []string{"x"}))
	assert.Equal(t, []string{"x"}, c.StringSlice("mixed", []string{"x"}))
}

// TestConfig_Section tests nested section access.
func TestConfig_Section(t *testing.T) {
	c := testConfig()
	assert.Equal(t, "deepseek-chat", c.Section("llm").String("model", ""))
	assert.Equal(t, "none", c.Section("missing").String("model", "none"))
}

// TestConfig_Has tests key presence.
func TestConfig_Has(t *testing.T) {
	c := testConfig()
	assert.True(t, c.Has("name"))
	assert.False(t, c.Has("missing"))
}

// TestConfig_NilMap tests the nil-map constructor.
func TestConfig_NilMap(t *testing.T) {
	c := New(nil)
	assert.Equal(t, "d", c.String("anything", "d"))
	assert.NotNil(t, c.Raw())
}
