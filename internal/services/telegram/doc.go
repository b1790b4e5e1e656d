// Package telegram delivers summaries through the Telegram Bot API.
//
// Summaries are converted to Telegram's HTML subset and sent with
// sendMessage. When the formatted text is longer than MessageLimit the raw
// markdown is rendered to a PDF and uploaded with sendDocument instead.
package telegram
