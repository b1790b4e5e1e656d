// Package llm provides an OpenAI-compatible chat completions client.
//
// The openai summarization backend sends the analyst system prompt and the
// transcript through Client.Complete; preflight uses Client.HealthCheck to
// verify the key and model before a run starts.
//
// # Retry Behaviour
//
// A single attempt is made by default. When configured with more attempts the
// client retries HTTP 408/429/5xx errors, empty completions and network
// timeouts with exponential backoff (base 1s, max 10s), honouring
// Retry-After. Context cancellation aborts retries immediately.
package llm
