// Package services defines shared utilities consumed by the pipeline steps and
// the external integrations beneath it.
//
// Context helpers stamp job keys, step names and run correlation identifiers
// for logging. Structured error markers plus the Wrap helper classify failures
// so the CLI can print remediation text next to fatal errors.
package services
