// Command yt-transcribe turns a video URL into a transcript, a summary and a
// set of notifications.
//
// The root command runs the resumable pipeline for one URL. Subcommands
// inspect and reset job state (status, clear), list past runs (history),
// check prerequisites (doctor), read the log (logs), exercise the notification channels
// (test-notify) and manage configuration (config init, config validate).
package main
