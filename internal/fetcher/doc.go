// Package fetcher provides HTTP page fetching with retry and backoff.
//
// The Fetcher issues a single GET request per page, retries transient
// failures (timeouts, connection errors, 5xx responses) with exponential
// backoff, and reports terminal failures (4xx responses, retry exhaustion)
// as typed errors the caller can classify with errors.As.
//
// Design decision: We implement retry locally in the fetcher rather than in
// the orchestrator because:
//  1. The retry budget and timeout are per-request concerns
//  2. Transient failures should never surface to callers unless exhausted
//  3. Keeping the policy here lets sequential and concurrent modes share it
//
// The fetcher never aborts a run: every failure mode is returned as a value.
package fetcher
