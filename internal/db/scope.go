// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Factory builds the Proxy stored under name on its first lookup.
type Factory func(name string) (Proxy, error)

// OptionsFactory returns a Factory building every Proxy from opts.
func OptionsFactory(opts Options) Factory {
	return func(string) (Proxy, error) { return New(opts) }
}

// Scope is a get-or-create cache of proxies for one unit of work: an
// inbound request, a CLI invocation or the whole process. Every Get for the
// same name returns the identical Proxy until the scope ends.
//
// The scope only guards its own map. Access to a Proxy is serialized by
// the Proxy itself.
type Scope struct {
	factory Factory

	mu      sync.Mutex
	entries map[string]Proxy
	order   []string
	ended   bool
}

// NewScope returns an empty scope. Entries are created on first lookup.
func NewScope(factory Factory) *Scope {
	return &Scope{factory: factory, entries: make(map[string]Proxy)}
}

// Get returns the Proxy stored under name, constructing it on the first
// call. Construction happens under the scope's lock, so concurrent first
// lookups observe a single instance. Factory errors are returned unchanged.
func (s *Scope) Get(name string) (Proxy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil, ErrScopeEnded
	}
	if p, ok := s.entries[name]; ok {
		return p, nil
	}
	if s.factory == nil {
		return nil, fmt.Errorf("%w: scope has no factory for %q", ErrConfig, name)
	}
	p, err := s.factory(name)
	if err != nil {
		return nil, err
	}
	s.entries[name] = p
	s.order = append(s.order, name)
	dbLogf("db: scope created proxy %q (%s)", name, p.Options().Backend())
	return p, nil
}

// Len reports how many proxies the scope holds.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// End closes every proxy created in the scope, most recent first, and
// discards the entries. Later calls are no-ops.
func (s *Scope) End() error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return nil
	}
	s.ended = true
	entries, order := s.entries, s.order
	s.entries, s.order = map[string]Proxy{}, nil
	s.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		if err := entries[order[i]].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", order[i], err))
		}
	}
	return errors.Join(errs...)
}

type scopeKey struct{}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// ScopeFrom returns the scope carried by ctx, if any.
func ScopeFrom(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	return s, ok && s != nil
}

// FromContext looks name up in the scope carried by ctx.
func FromContext(ctx context.Context, name string) (Proxy, error) {
	s, ok := ScopeFrom(ctx)
	if !ok {
		return nil, ErrNoScope
	}
	return s.Get(name)
}
