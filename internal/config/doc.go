// Package config loads, normalizes, and validates yt-transcribe configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts) and reads TOML files. Environment variables such as
// OPENAI_API_KEY or TELEGRAM_BOT_TOKEN override file values, so secrets can
// stay out of the config file. The Config type centralizes the job root,
// external tool names, the summarization backend and every notification
// channel in one pass.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical backend names, and clear validation errors.
package config
