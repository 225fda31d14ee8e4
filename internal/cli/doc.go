// Package cli parses command-line arguments into an app.Config and maps
// argument errors to process exit codes.
package cli
