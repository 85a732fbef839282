// Package naming keeps object identifiers and display labels in agreement.
//
// The Resolver answers lookups and computes free identifiers; it never
// mutates the scene. The Synchronizer performs validated renames and
// re-syncs the label to the resulting identifier.
package naming

import (
	"strings"

	"github.com/msto63/scenebridge/internal/scene"
)

// Resolver maps names to live objects
type Resolver struct {
	ctx scene.Context
}

// NewResolver creates a resolver over ctx
func NewResolver(ctx scene.Context) *Resolver {
	return &Resolver{ctx: ctx}
}

// FreeName returns desired if no live object holds it, otherwise the
// first free variant with an incremented numeric suffix. The name is
// not reserved; callers must use it before the next command runs.
func (r *Resolver) FreeName(desired string) string {
	if desired == "" || !r.ctx.Exists(desired) {
		return desired
	}

	candidate := scene.IncrementSuffix(desired)
	for r.ctx.Exists(candidate) {
		candidate = scene.IncrementSuffix(candidate)
	}
	return candidate
}

// Resolve finds the live object whose identifier equals name
func (r *Resolver) Resolve(name string) (*scene.Object, bool) {
	if name == "" {
		return nil, false
	}
	return r.ctx.Find(name)
}

// Sanitize removes every character that may not appear in an identifier.
// The result may be empty.
func Sanitize(raw string) string {
	return strings.Map(func(r rune) rune {
		if scene.InvalidIDRune(r) {
			return -1
		}
		return r
	}, raw)
}
