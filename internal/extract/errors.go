package extract

import (
	"fmt"
	"runtime/debug"
)

// Error is an extraction failure scoped to one document.
type Error struct {
	Rule string
	URL  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s %s: %v", e.Rule, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Run applies rule to doc and converts a panic into *Error.
func Run[T any](name string, doc *Document, rule func(*Document) (T, error)) (out T, err error) {
	defer func() {
		if v := recover(); v != nil {
			var zero T
			out = zero
			err = &Error{Rule: name, URL: doc.URL, Err: fmt.Errorf("panic: %v\n%s", v, debug.Stack())}
		}
	}()

	out, err = rule(doc)
	if err != nil {
		return out, &Error{Rule: name, URL: doc.URL, Err: err}
	}
	return out, nil
}
