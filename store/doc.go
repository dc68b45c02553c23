// Package store defines the contracts between the call pipeline and its
// external collaborators: the call-record store, the per-tenant agent
// configuration store, and the knowledge-retrieval service. In-memory
// implementations ship for tests and single-process deployments, plus a
// Redis read-through cache for agent configurations.
package store
