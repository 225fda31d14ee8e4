// Package compose builds concrete pipeline definitions from a loaded profile
// model. Composers are pure: they produce an immutable pipeline.Definition
// and never run a step or touch the filesystem during construction.
package compose
