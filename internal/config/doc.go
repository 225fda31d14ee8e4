// Package config defines the format-agnostic profile model consumed by the
// pipeline composers, plus the Loader interface concrete formats implement.
package config
