/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package characters keeps the list of character names known to a script and
// feeds name completion.
package characters

import (
	"sort"
	"strings"
	"sync"

	"github.com/maruel/natural"
)

// Registry is an ordered set of uppercase character names. Names keep their
// insertion order; lookups ignore case. It is safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	names     []string
	listeners []func([]string)
}

// NewRegistry returns a registry seeded with names, deduplicated in order.
func NewRegistry(names ...string) *Registry {
	r := &Registry{}
	for _, n := range names {
		r.add(n)
	}
	return r
}

// Canonical is the stored form of a name.
func Canonical(name string) string { return strings.ToUpper(strings.TrimSpace(name)) }

// Add stores name in canonical form unless an equal name exists. It reports
// whether the registry changed. Blank names are ignored.
func (r *Registry) Add(name string) bool {
	r.mu.Lock()
	ok := r.add(name)
	snap, ls := r.snapshot()
	r.mu.Unlock()
	if ok {
		notify(ls, snap)
	}
	return ok
}

func (r *Registry) add(name string) bool {
	n := Canonical(name)
	if n == "" || r.index(n) >= 0 {
		return false
	}
	r.names = append(r.names, n)
	return true
}

// Remove deletes the entry equal to name. The comparison is exact against
// the stored uppercase form.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	i := -1
	for k, n := range r.names {
		if n == name {
			i = k
			break
		}
	}
	if i >= 0 {
		r.names = append(r.names[:i], r.names[i+1:]...)
	}
	snap, ls := r.snapshot()
	r.mu.Unlock()
	if i < 0 {
		return false
	}
	notify(ls, snap)
	return true
}

// Contains reports whether name is registered, ignoring case.
func (r *Registry) Contains(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index(Canonical(name)) >= 0
}

// List returns a copy of the names in insertion order.
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.names)
}

// Subscribe registers fn to receive the full list after every change. fn is
// called once immediately with the current list.
func (r *Registry) Subscribe(fn func(names []string)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	snap := append([]string(nil), r.names...)
	r.mu.Unlock()
	fn(snap)
}

// Complete returns the names starting with prefix, ignoring case, in
// registry order. An empty prefix matches nothing.
func (r *Registry) Complete(prefix string) []string {
	p := Canonical(prefix)
	if p == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.names {
		if strings.HasPrefix(n, p) {
			out = append(out, n)
		}
	}
	return out
}

// Sorted returns the names in natural order, so "GUARD 2" precedes "GUARD 10".
func (r *Registry) Sorted() []string {
	out := r.List()
	sort.Sort(natural.StringSlice(out))
	return out
}

func (r *Registry) index(canonical string) int {
	for i, n := range r.names {
		if n == canonical {
			return i
		}
	}
	return -1
}

func (r *Registry) snapshot() ([]string, []func([]string)) {
	return append([]string(nil), r.names...), append([]func([]string){}, r.listeners...)
}

func notify(ls []func([]string), names []string) {
	for _, fn := range ls {
		fn(names)
	}
}
