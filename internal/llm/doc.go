// Package llm provides provider-neutral chat and embedding clients.
//
// Supported chat providers: Anthropic (Claude), OpenAI (GPT), and Ollama /
// LMStudio for local models via the OpenAI-compatible wire format. Embeddings
// use the OpenAI-compatible /embeddings endpoint.
//
// Provider failures are reported as a small closed set of tagged errors
// ([QuotaError], [AuthError], [TransportError]) so that callers can apply
// fail-open policy by tag rather than by matching error text. A shared retry
// helper with exponential back-off handles rate limits and 5xx responses.
//
// Use [NewChat] and [NewEmbed] to obtain clients by provider name.
package llm
