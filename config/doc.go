// Package config defines per-tenant agent configuration, provider
// credentials, and server settings. Agent configurations are validated at
// load time, so an unknown provider name or out-of-range parameter is
// rejected before a call ever reaches the pipeline.
package config
