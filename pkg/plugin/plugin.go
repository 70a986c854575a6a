// Package plugin keeps an ordered set of named plugins and dispatches
// extension points to their hooks.
//
// Plugins run in ascending Priority order. Plugins with equal priority run
// in the order they were first registered.
package plugin

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/multierr"
)

// Extension points the request pipeline dispatches.
const (
	// PreRequest runs through Wait before anything else; args: *RequestArgs.
	PreRequest = "preRequest"
	// Request runs through First; a non-nil result replaces the transport.
	Request = "request"
	// StaticRequest is Request for requests made without a Formio instance.
	StaticRequest = "staticRequest"
	// RequestOptions runs through Alter over the request options; args: url.
	RequestOptions = "requestOptions"
	// RequestResponse runs through Alter over the decoded response body.
	RequestResponse = "requestResponse"
)

// Hook is one plugin function at one extension point. A nil result means the
// hook had nothing to contribute.
type Hook func(ctx context.Context, args ...any) (any, error)

// Plugin is a named set of hooks.
type Plugin struct {
	// Name is set by Register to the name the plugin was last registered
	// under.
	Name     string
	Priority int
	Hooks    map[string]Hook
	// Init runs once when the plugin is registered.
	Init func(r *Registry)
	// Deregister runs when the plugin is removed from a registry.
	Deregister func(r *Registry)
}

type entry struct {
	name   string
	plugin *Plugin
	seq    uint64
}

// Registry is safe for concurrent use. The zero value is ready to use.
type Registry struct {
	mu      sync.RWMutex
	nextSeq uint64
	entries []entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds p under name. A plugin already registered under name is
// replaced in place and the order is recomputed from the new priority.
// Entries are keyed by name, so one plugin may be registered under several
// names.
func (r *Registry) Register(p *Plugin, name string) {
	if p == nil {
		return
	}

	r.mu.Lock()
	replaced := false
	for i, e := range r.entries {
		if e.name == name {
			r.entries[i].plugin = p
			replaced = true
			break
		}
	}
	if !replaced {
		r.nextSeq++
		r.entries = append(r.entries, entry{name: name, plugin: p, seq: r.nextSeq})
	}
	p.Name = name
	sort.SliceStable(r.entries, func(i, j int) bool {
		a, b := r.entries[i], r.entries[j]
		if a.plugin.Priority != b.plugin.Priority {
			return a.plugin.Priority < b.plugin.Priority
		}
		return a.seq < b.seq
	})
	r.mu.Unlock()

	if p.Init != nil {
		p.Init(r)
	}
}

// Deregister removes the plugin registered under name and reports whether
// there was one.
func (r *Registry) Deregister(name string) bool {
	r.mu.Lock()
	var removed *Plugin
	for i, e := range r.entries {
		if e.name == name {
			removed = e.plugin
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	if removed == nil {
		return false
	}
	if removed.Deregister != nil {
		removed.Deregister(r)
	}
	return true
}

// DeregisterPlugin removes every entry holding p and reports whether there
// was one. p.Deregister runs once.
func (r *Registry) DeregisterPlugin(p *Plugin) bool {
	if p == nil {
		return false
	}
	r.mu.Lock()
	kept := r.entries[:0]
	found := false
	for _, e := range r.entries {
		if e.plugin == p {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	r.mu.Unlock()

	if found && p.Deregister != nil {
		p.Deregister(r)
	}
	return found
}

// Get returns the plugin registered under name.
func (r *Registry) Get(name string) (*Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.name == name {
			return e.plugin, true
		}
	}
	return nil, false
}

// List returns the plugins in dispatch order.
func (r *Registry) List() []*Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Plugin, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.plugin
	}
	return out
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// hooks snapshots the hooks for an extension point so that dispatch does not
// hold the lock while plugin code runs.
func (r *Registry) hooks(name string) []Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var hs []Hook
	for _, e := range r.entries {
		if h, ok := e.plugin.Hooks[name]; ok && h != nil {
			hs = append(hs, h)
		}
	}
	return hs
}

// Wait runs every hook for name, in order, whatever the individual outcomes,
// and returns all failures combined.
func (r *Registry) Wait(ctx context.Context, name string, args ...any) error {
	var errs error
	for _, h := range r.hooks(name) {
		if _, err := h(ctx, args...); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// First returns the first non-nil hook result for name. Hooks after it are
// not run. An error stops dispatch.
func (r *Registry) First(ctx context.Context, name string, args ...any) (any, error) {
	for _, h := range r.hooks(name) {
		result, err := h(ctx, args...)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
	}
	return nil, nil
}

// Alter threads value through every hook for name. Each hook is called with
// the current value followed by args, and its result becomes the value the
// next hook sees. A nil result leaves the value unchanged.
func (r *Registry) Alter(ctx context.Context, name string, value any, args ...any) (any, error) {
	for _, h := range r.hooks(name) {
		result, err := h(ctx, append([]any{value}, args...)...)
		if err != nil {
			return value, err
		}
		if result != nil {
			value = result
		}
	}
	return value, nil
}

// AlterAs is Alter for a statically typed value. A hook that returns a
// value of another type is reported as an error.
func AlterAs[T any](ctx context.Context, r *Registry, name string, value T, args ...any) (T, error) {
	result, err := r.Alter(ctx, name, value, args...)
	if err != nil {
		return value, err
	}
	typed, ok := result.(T)
	if !ok {
		return value, fmt.Errorf("plugin hook %s returned %T, want %T", name, result, value)
	}
	return typed, nil
}

// Noop is a hook that does nothing.
func Noop(context.Context, ...any) (any, error) {
	return nil, nil
}

// Identity is a hook that returns its first argument.
func Identity(_ context.Context, args ...any) (any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	return args[0], nil
}
