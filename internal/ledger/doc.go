// Package ledger persists per-job step completion and artifacts.
//
// Each job directory holds a single ledger.json recording which of the six
// pipeline steps are done and which files each step produced. Every write goes
// through an atomic temp-file rename, so a crash leaves either the previous or
// the new ledger. A step is only trustworthy when Verify confirms its artifacts
// still exist; callers decide what to do with a MissingArtifactError.
//
// Typed helpers (SaveJSON, SaveText and friends) store small artifacts next to
// the ledger, and Lock takes a per-job flock so two runs cannot share a
// directory.
package ledger
