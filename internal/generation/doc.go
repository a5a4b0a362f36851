// Package generation turns composed prompts into validated JSON by invoking
// generative text models.
//
// A Client holds a primary and an optional secondary Provider. Any failure of
// the primary, whether transport, a non-2xx answer, unparseable output or
// output that does not satisfy the schema, is retried exactly once against the
// secondary. When both fail the Client returns an error that matches
// ErrGenerationFailed and wraps both causes. Nothing is cached.
//
// Concrete providers (Gemini, OpenAI, Anthropic and a deterministic demo
// model) live in internal/platform/llm.
package generation
