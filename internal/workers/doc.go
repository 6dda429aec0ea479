/*
Package workers sizes and runs small worker pools in containerized
environments.

# Overview

runtime.NumCPU reports the host CPU count even when the container is limited
by cgroups. Since Go 1.19 GOMAXPROCS follows the container limit, so worker
counts here are derived from runtime.GOMAXPROCS(0):

	// 2 workers per available CPU, at most 16
	n := workers.Count(2.0, 16)

	// explicit operator override wins when positive
	n := workers.Resolve(cfg.FetchWorkers, 2.0, 16)

# Running Work

[Each] fans a fixed number of indexed jobs out over a bounded set of
goroutines. Callers that want per-item failures to be tolerated (the artwork
fetcher omits tiles that fail to decode) record the failure and return nil.
Callers that need all-or-nothing behaviour return the error, which cancels
the remaining jobs:

	err := workers.Each(ctx, len(items), n, func(ctx context.Context, i int) error {
	    out[i], errs[i] = fetch(ctx, items[i])
	    return nil
	})

# Thread Safety

All functions in this package are safe for concurrent use.
*/
package workers
