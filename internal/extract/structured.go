package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// JSONScripts decodes every script[type=typ] block in document order.
// Blocks that fail to decode are reported in errs and skipped.
func (d *Document) JSONScripts(typ string) (vals []any, errs []error) {
	return JSONScriptsIn(d, "script[type=\""+typ+"\"]")
}

// JSONScriptsIn decodes the JSON text of every node matching selector.
func JSONScriptsIn(d *Document, selector string) (vals []any, errs []error) {
	for _, n := range d.Find(selector).Nodes {
		raw := ""
		if n.FirstChild != nil {
			raw = strings.TrimSpace(n.FirstChild.Data)
		}
		if raw == "" {
			continue
		}
		v, err := DecodeJSON(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		vals = append(vals, v)
	}
	return vals, errs
}

func DecodeJSON(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}

// Path walks nested maps and arrays. Array steps are decimal indexes.
func Path(v any, keys ...string) (any, bool) {
	cur := v
	for _, k := range keys {
		switch t := cur.(type) {
		case map[string]any:
			next, ok := t[k]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(k)
			if err != nil || i < 0 || i >= len(t) {
				return nil, false
			}
			cur = t[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// String resolves a path and renders strings and numbers as text.
func String(v any, keys ...string) (string, bool) {
	x, ok := Path(v, keys...)
	if !ok {
		return "", false
	}
	return AsString(x)
}

func AsString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	}
	return "", false
}

// PickString returns the first non-empty string among keys of m.
func PickString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := AsString(m[k]); ok {
			return s
		}
	}
	return ""
}

// Walk visits every map in v depth-first. Map keys are visited in sorted
// order, so the same input always yields the same visit order.
func Walk(v any, fn func(m map[string]any)) {
	switch t := v.(type) {
	case map[string]any:
		fn(t)
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			Walk(t[k], fn)
		}
	case []any:
		for _, x := range t {
			Walk(x, fn)
		}
	}
}
