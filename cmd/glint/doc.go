// Glint reviews changed code with deterministic rules and an LLM, grounded
// in related code retrieved from a repository embedding index.
//
// It reviews GitHub pull requests or local git changes, aggregates findings
// into a ranked, capped report, optionally applies low-risk suggestions, and
// exits with deterministic codes suitable for CI gating.
//
// Usage:
//
//	glint review pr 42                # review a pull request and post comments
//	glint review local                # review working tree changes
//	glint review local --staged       # review staged changes
//	glint review local --range main..HEAD
//	glint index build                 # build the repository embedding index
//	glint cache stats                 # inspect the model-output cache
//
// See https://github.com/glintbot/glint for full documentation.
package main
