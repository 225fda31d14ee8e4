// Package pipeline contains the declarative step/graph model and the
// sequential runner at the heart of reelpipego.
//
// A composer builds an immutable Definition, Resolve turns it into one
// deterministic execution order, and Run walks that order against a shared
// key/value context. Failures never propagate out of Run; they are recorded
// per step and cascaded as skips to every transitive dependent.
package pipeline
