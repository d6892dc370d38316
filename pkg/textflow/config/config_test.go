package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/textflow/pkg/textflow/config"
)

func TestAccessors(t *testing.T) {
	cfg := config.New(map[string]any{
		"name":      "textflow",
		"count":     3,
		"count64":   int64(4),
		"whole":     5.0,
		"fraction":  2.5,
		"enabled":   true,
		"timeout":   "30s",
		"seconds":   2,
		"fseconds":  1.5,
		"bad":       "soon",
		"wrongtype": []string{"x"},
	})

	assert.Equal(t, "textflow", cfg.String("name", "d"))
	assert.Equal(t, "d", cfg.String("count", "d"))
	assert.Equal(t, "d", cfg.String("missing", "d"))

	assert.Equal(t, 3, cfg.Int("count", 0))
	assert.Equal(t, 4, cfg.Int("count64", 0))
	assert.Equal(t, 5, cfg.Int("whole", 0))
	assert.Equal(t, 7, cfg.Int("fraction", 7), "fractional floats fall back")
	assert.Equal(t, 7, cfg.Int("name", 7))

	assert.Equal(t, 2.5, cfg.Float("fraction", 0))
	assert.Equal(t, 3.0, cfg.Float("count", 0))
	assert.Equal(t, 4.0, cfg.Float("count64", 0))
	assert.Equal(t, 9.0, cfg.Float("name", 9))

	assert.True(t, cfg.Bool("enabled", false))
	assert.True(t, cfg.Bool("name", true))

	assert.Equal(t, 30*time.Second, cfg.Duration("timeout", 0))
	assert.Equal(t, 2*time.Second, cfg.Duration("seconds", 0))
	assert.Equal(t, 1500*time.Millisecond, cfg.Duration("fseconds", 0))
	assert.Equal(t, time.Minute, cfg.Duration("bad", time.Minute))
	assert.Equal(t, time.Minute, cfg.Duration("wrongtype", time.Minute))

	assert.True(t, cfg.Has("bad"))
	assert.False(t, cfg.Has("missing"))
}

func TestSection(t *testing.T) {
	cfg := config.New(map[string]any{
		"llm":    map[string]any{"model": "deepseek-chat"},
		"legacy": map[any]any{"model": "old", 1: "ignored"},
		"scalar": "x",
	})

	assert.Equal(t, "deepseek-chat", cfg.Section("llm").String("model", ""))
	assert.Equal(t, "old", cfg.Section("legacy").String("model", ""))
	assert.False(t, cfg.Section("scalar").Has("model"))
	assert.False(t, cfg.Section("missing").Has("model"))
}

func TestNew_Nil(t *testing.T) {
	cfg := config.New(nil)
	assert.Equal(t, "d", cfg.String("x", "d"))
	assert.False(t, cfg.Section("x").Has("y"))
}

func TestDottedKeys(t *testing.T) {
	cfg := config.New(map[string]any{
		"llm": map[string]any{
			"model":   "deepseek-chat",
			"timeout": "45s",
			"retry":   map[any]any{"max": 2},
		},
		"flat.key": "literal",
	})

	assert.Equal(t, "deepseek-chat", cfg.String("llm.model", ""))
	assert.Equal(t, 45*time.Second, cfg.Duration("llm.timeout", 0))
	assert.Equal(t, 2, cfg.Int("llm.retry.max", 0))
	assert.Equal(t, "literal", cfg.String("flat.key", ""), "exact keys win over paths")
	assert.False(t, cfg.Has("llm.missing"))
	assert.False(t, cfg.Has("llm.model.deeper"))
	assert.Equal(t, []string{"flat.key", "llm"}, cfg.Keys())
}
