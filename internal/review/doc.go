// Package review contains the finding types and the review pipeline engine.
//
// Findings come from two independent producers per hunk: a deterministic
// rule catalog (rules.go) and the LLM (parse.go assembles prompts' output
// into findings, dropping malformed elements individually). The aggregator
// (aggregate.go) merges both streams into one scored, deduplicated, capped
// list; severity dominates category in the strict total order.
//
// The engine (engine.go) walks changed files hunk by hunk: context
// extraction, retrieval, rules, then a bounded-concurrency model call gated
// by soft call/time/token budgets. Budgets never abort in-flight calls; they
// only stop new ones from being scheduled.
package review
