// Package gateway produces ready-to-use AI provider handles bound to a
// credential and model. Providers are registered per capability family in
// an explicit map, so the set of valid names is enumerable when tenant
// configuration is validated, and adding a backend is purely additive.
//
// The gateway is a pure adapter: it never retries, and it surfaces each
// family's typed error unchanged. Retry and fallback policy belong to the
// pipeline orchestrator. The one cross-cutting concern it does own is
// per-provider rate limiting, so that a burst of concurrent calls cannot
// trip upstream quotas.
package gateway
