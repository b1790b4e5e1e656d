// Package preflight provides readiness checks for the host platform,
// external binaries, the summarization backend and filesystem paths.
//
// These checks run in two contexts:
//   - The run command calls Gate before any pipeline step. The first blocking
//     failure aborts the run with an ErrPrecondition error.
//   - The "yt-transcribe doctor" command calls RunAll and renders every result,
//     including informational notification channel checks.
package preflight
