// Package resilience guards repeated operations such as process spawns.
//
//   - RateLimiter: token bucket bounding how often an operation starts
//   - Bulkhead: bounds how many run at once
//   - CircuitBreaker: fails fast after consecutive failures
//   - Retry: re-runs an operation with exponential backoff
//
// process.Runner composes them, outermost first, in that order:
//
//	rl.ExecuteWait(ctx, func() error {
//	    return bh.Execute(ctx, func() error {
//	        return cb.Execute(func() error {
//	            return resilience.RetryFunc(ctx, retryCfg, spawnAndWait)
//	        })
//	    })
//	})
package resilience
