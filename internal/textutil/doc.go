// Package textutil provides small text helpers for filenames and
// rune-safe truncation.
package textutil
