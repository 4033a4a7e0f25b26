// Package runtime instantiates compiled component plans and runs the
// incremental update engine over them.
//
// An Instance owns its values, its child instances, and its event
// subscriptions. All work is single-threaded and cooperative: a prop write,
// the recomputation it triggers, child forwarding, and event delivery all
// happen synchronously on the calling goroutine, and the external call does
// not return until every triggered pass has drained.
//
// A pass walks the plan's precomputed topological order and recomputes
// exactly the nodes with a dirty producer, comparing each recomputed value
// against the previous one with cty's RawEquals; an unchanged value stops
// propagation there. Re-entrant writes from event handlers are absorbed into
// the active pass when the target node has not been finalized yet, and
// deferred to a follow-up pass when it has; two passes never interleave
// their recomputation steps.
package runtime
