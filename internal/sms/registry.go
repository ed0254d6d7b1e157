package sms

import (
	"fmt"
	"time"
)

type entry struct {
	adapter Adapter
	breaker *MicroBreaker
}

// Registry holds adapters in fallback priority order.
type Registry struct {
	entries []entry
	index   map[string]int
}

type BreakerSettings struct {
	FailThreshold int
	OpenFor       time.Duration
}

func NewRegistry() *Registry {
	return &Registry{index: map[string]int{}}
}

// Register appends a at the lowest priority so far.
func (r *Registry) Register(a Adapter, bs BreakerSettings) error {
	name := a.Name()
	if _, dup := r.index[name]; dup {
		return fmt.Errorf("sms: adapter %q already registered", name)
	}
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, entry{adapter: a, breaker: NewMicroBreaker(bs.FailThreshold, bs.OpenFor)})
	return nil
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.adapter.Name())
	}
	return out
}

func (r *Registry) Len() int { return len(r.entries) }

// order returns entries with preferred first when it is registered; the rest
// keep their registration order.
func (r *Registry) order(preferred string) []entry {
	i, ok := r.index[preferred]
	if !ok || i == 0 {
		return r.entries
	}
	out := make([]entry, 0, len(r.entries))
	out = append(out, r.entries[i])
	out = append(out, r.entries[:i]...)
	out = append(out, r.entries[i+1:]...)
	return out
}
