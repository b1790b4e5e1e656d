// Package pipeline drives a URL through fetch-metadata, download-audio,
// transcribe, summarize, publish-transcript and notify.
//
// Each step consults the job ledger first. A done step with intact artifacts
// is reused without calling its collaborator; a done step with a missing
// artifact fails fast with a CorruptedStateError telling the operator which
// step to clear. Markers are only written after their artifacts, so an
// interrupted run resumes at the first unfinished step.
//
// publish-transcript is the only soft step: upload failures are logged and the
// run continues without a link. Notification channels are isolated by the
// fan-out and never fail the run.
package pipeline
