// Package logs tails the yt-transcribe log file for the logs command.
//
// A negative offset returns the last N lines; callers then pass the returned
// offset back in to read only what was appended since, which is how follow
// mode works. Lines can be narrowed to one job by matching its key.
package logs
