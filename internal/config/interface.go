package config

import "context"

// Loader abstracts the on-disk profile format away from the application.
// Implementations parse the given files or directories into the unified
// model; they must not mutate any global state.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Model, error)
}
