// Package llm adapts concrete model vendors to generation.Provider.
//
// Gemini, OpenAI and Anthropic wrap their official SDKs; Demo answers every
// request with fixed, schema-valid content so the service runs end to end
// without network access or API keys. NewProviders builds the primary and
// secondary pair from configuration and the backend mode.
package llm
