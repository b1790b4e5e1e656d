// Package privatebin publishes transcripts to a PrivateBin host.
//
// Pastes use the v2 format: the JSON document is raw-deflated, then sealed
// with AES-256-GCM under a key derived by PBKDF2-SHA256 from a random master
// key. The master key never leaves the client except as the base58 URL
// fragment of the returned link.
package privatebin
