package probe

import (
	"fmt"
	"net/http"
)

// Check config maps arrive from JSONB, so numbers show up as float64 and
// lists as []any. These readers tolerate both that and literal Go values
// from tests and in-code declarations.

func cfgString(cfg map[string]any, key, def string) string {
	if v, ok := cfg[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

func cfgStrings(cfg map[string]any, key string) []string {
	v, ok := cfg[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, fmt.Sprint(e))
		}
		return out
	}
	return nil
}

func cfgInts(cfg map[string]any, key string) []int {
	v, ok := cfg[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []int:
		return t
	case []any:
		out := make([]int, 0, len(t))
		for _, e := range t {
			switch n := e.(type) {
			case int:
				out = append(out, n)
			case float64:
				out = append(out, int(n))
			}
		}
		return out
	}
	return nil
}

func cfgHeader(cfg map[string]any, key string) http.Header {
	v, ok := cfg[key]
	if !ok {
		return nil
	}
	h := http.Header{}
	switch t := v.(type) {
	case map[string]string:
		for k, s := range t {
			h.Set(k, s)
		}
	case map[string]any:
		for k, e := range t {
			h.Set(k, fmt.Sprint(e))
		}
	default:
		return nil
	}
	return h
}
