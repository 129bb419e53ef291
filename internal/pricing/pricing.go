// Package pricing builds subscription offers from provider pages.
package pricing

import (
	"fmt"
	"sort"
	"sync"

	"psparser/internal/domain/models"
	"psparser/internal/extract"
	"psparser/internal/normalize"
)

// Target is one configured page to read offers from.
type Target struct {
	Provider string
	Region   string
	URL      string
	Lang     string
	Format   normalize.PriceFormat
	Tier     string
	TierID   string
	Image    string
	Months   int
}

// Adapter reads offers of one provider. Plans carry Months; period labels
// are filled in by the runner.
type Adapter interface {
	Provider() string
	Extract(doc *extract.Document, t Target) ([]models.PricingOffer, error)
}

type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// DefaultRegistry knows every built-in provider.
func DefaultRegistry() *Registry {
	return NewRegistry(PSPlus{}, UbisoftClassics{}, GTAPlus{}, EAPlay{})
}

func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Provider()] = a
}

func (r *Registry) Get(provider string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("unknown pricing provider %q", provider)
	}
	return a, nil
}

func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.adapters))
	for p := range r.adapters {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
