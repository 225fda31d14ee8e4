// Package app wires the profile loader, the composer registry, the pipeline
// runner, and the report adapter into one application lifecycle.
package app
