// Package database opens the connections used by the record store, the
// session registry and the submission cache.
package database

import (
	"context"
	"fmt"
	"time"
)

// Check probes one dependency for the readiness endpoint.
type Check func(ctx context.Context) error

// CheckAll runs every named check with a shared timeout and returns the
// failures by name.
func CheckAll(ctx context.Context, timeout time.Duration, checks map[string]Check) map[string]error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	failed := map[string]error{}
	for name, check := range checks {
		if err := check(ctx); err != nil {
			failed[name] = fmt.Errorf("%s: %w", name, err)
		}
	}
	return failed
}
