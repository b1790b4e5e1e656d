// Package history keeps an index of pipeline runs in SQLite.
//
// The ledger in each job directory stays the source of truth for resuming;
// history only records when each run started and finished, its outcome and
// where the summary landed, so the history command can list recent work.
// Schema changes ship as embedded migrations tracked in schema_migrations.
package history
