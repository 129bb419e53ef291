package query

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

func Int(r *http.Request, key string) (val int, present bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true, fmt.Errorf("%s must be integer", key)
	}
	return n, true, nil
}

// PositiveInt is Int that also rejects zero and negative values.
func PositiveInt(r *http.Request, key string) (val int, present bool, err error) {
	n, ok, err := Int(r, key)
	if err != nil || !ok {
		return n, ok, err
	}
	if n <= 0 {
		return 0, true, fmt.Errorf("%s must be > 0", key)
	}
	return n, true, nil
}

// String returns the trimmed value of the first key present.
func String(r *http.Request, keys ...string) string {
	q := r.URL.Query()
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	return ""
}
