package extract

import "fmt"

type Status int

const (
	StatusNotFound Status = iota
	StatusFound
	StatusMalformed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusMalformed:
		return "malformed"
	default:
		return "not_found"
	}
}

// Source is the strategy that produced a field value.
type Source int

const (
	SourceNone Source = iota
	SourceStructured
	SourceMarkup
)

func (s Source) String() string {
	switch s {
	case SourceStructured:
		return "structured"
	case SourceMarkup:
		return "markup"
	default:
		return "none"
	}
}

// Field is the outcome of extracting one value.
type Field[T any] struct {
	Value  T
	Status Status
	Source Source
	Err    error
}

func Found[T any](v T, src Source) Field[T] {
	return Field[T]{Value: v, Status: StatusFound, Source: src}
}

func Missing[T any]() Field[T] {
	return Field[T]{}
}

func Malformed[T any](src Source, err error) Field[T] {
	return Field[T]{Status: StatusMalformed, Source: src, Err: err}
}

func (f Field[T]) OK() bool { return f.Status == StatusFound }

func (f Field[T]) Or(def T) T {
	if f.OK() {
		return f.Value
	}
	return def
}

func (f Field[T]) String() string {
	if f.Err != nil {
		return fmt.Sprintf("%s(%s): %v", f.Status, f.Source, f.Err)
	}
	return fmt.Sprintf("%s(%s)", f.Status, f.Source)
}

// Strategy produces one candidate outcome for a field.
type Strategy[T any] func() Field[T]

// First runs strategies in priority order and returns the first found
// value. When nothing is found, a malformed outcome wins over a plain miss
// so the caller can tell the two apart.
func First[T any](strategies ...Strategy[T]) Field[T] {
	var malformed *Field[T]
	for _, s := range strategies {
		f := s()
		switch f.Status {
		case StatusFound:
			return f
		case StatusMalformed:
			if malformed == nil {
				malformed = &f
			}
		}
	}
	if malformed != nil {
		return *malformed
	}
	return Missing[T]()
}

// NonEmpty wraps a string lookup as a markup strategy.
func NonEmpty(src Source, s string) Field[string] {
	if s == "" {
		return Missing[string]()
	}
	return Found(s, src)
}
