// Package core provides the foundational value types shared across kernelmesh:
//
//   - Arguments (the named input mapping threaded through an invocation)
//   - Result (output value plus provenance metadata and token usage)
//   - Chunk (one element of a streaming invocation)
//   - InvocationLimiter (cooperative cap on concurrent invocations)
//
// The package intentionally carries no behavior beyond small helpers on these
// types; pipeline mechanics live in the filter package and orchestration in
// the root kernelmesh package.
package core
