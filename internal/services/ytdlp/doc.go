// Package ytdlp wraps the yt-dlp command line for metadata lookup and audio
// extraction. Failures are classified from stderr into sentinel errors tagged
// with services markers so the CLI can explain them.
package ytdlp
