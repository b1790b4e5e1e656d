// Package whisper runs mlx-whisper speech-to-text through uvx.
//
// The CLI writes several output formats next to each other; the pipeline only
// keeps the plain-text <basename>.txt file.
package whisper
