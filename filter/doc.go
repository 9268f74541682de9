// Package filter implements the function-invocation pipeline: ordered,
// re-entrant middleware chains wrapped around a callable unit.
//
// Two filter variants exist. A FunctionFilter wraps a whole invocation and a
// PromptRenderFilter wraps only the prompt-render step of a prompt-based
// function. Both receive a mutable per-call context and an explicit next
// continuation; a filter that never calls next short-circuits everything
// registered after it (and the wrapped call itself), which is the
// cancellation mechanism.
//
// Filters are held in an explicit ordered list (Pipeline) injected into the
// kernel at setup time. Registration order is the invocation order on the way
// in and the reverse order on the way out, standard onion/middleware
// semantics. The chain is built by folding the list right-to-left around the
// terminal action, so the wrapping structure is an explicit composition
// rather than hidden subscriber state.
//
// The pipeline never catches errors on a caller's behalf: each filter
// chooses, via an ordinary error check around its own next call, whether to
// suppress, transform, or let an error pass.
package filter
