package config

import (
	"sort"
	"strings"
	"time"
)

// Config is a read-only view over decoded YAML or JSON. Keys may be dotted
// paths ("llm.model") into nested sections. Accessors never fail: a missing
// key or a value of the wrong shape yields the caller's default.
type Config struct {
	data map[string]any
}

// New wraps data. A nil map behaves like an empty document.
func New(data map[string]any) Config {
	if data == nil {
		data = map[string]any{}
	}
	return Config{data: data}
}

// Section returns the nested document at key. Anything that is not a map
// yields an empty Config.
func (c Config) Section(key string) Config {
	v, _ := c.lookup(key)
	m, _ := asMap(v)
	return New(m)
}

// Keys lists the top-level keys in sorted order.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is present, even with a null value.
func (c Config) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

func (c Config) String(key, def string) string {
	if v, ok := c.lookup(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func (c Config) Bool(key string, def bool) bool {
	if v, ok := c.lookup(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int accepts integers and whole floats; JSON decodes every number as float64.
func (c Config) Int(key string, def int) int {
	v, _ := c.lookup(key)
	f, ok := number(v)
	if !ok || f != float64(int(f)) {
		return def
	}
	return int(f)
}

func (c Config) Float(key string, def float64) float64 {
	v, _ := c.lookup(key)
	if f, ok := number(v); ok {
		return f
	}
	return def
}

// Duration parses strings with time.ParseDuration and treats bare numbers
// as seconds.
func (c Config) Duration(key string, def time.Duration) time.Duration {
	v, ok := c.lookup(key)
	if !ok {
		return def
	}
	switch val := v.(type) {
	case time.Duration:
		return val
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		return def
	}
	if secs, ok := number(v); ok {
		return time.Duration(secs * float64(time.Second))
	}
	return def
}

func (c Config) lookup(key string) (any, bool) {
	if v, ok := c.data[key]; ok {
		return v, true
	}
	head, rest, dotted := strings.Cut(key, ".")
	if !dotted {
		return nil, false
	}
	sub, ok := asMap(c.data[head])
	if !ok {
		return nil, false
	}
	return New(sub).lookup(rest)
}

// asMap normalizes the two map shapes YAML decoders produce. Non-string keys
// are dropped.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			if s, ok := k.(string); ok {
				out[s] = val
			}
		}
		return out, true
	}
	return nil, false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
