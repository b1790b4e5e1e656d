// Package notifications fans a finished summary out to every configured
// channel.
//
// Channels run one after another in configuration order. Each delivery is
// isolated: an error or panic in one channel is logged as a warning and
// recorded in its Result, and the remaining channels still run. Channels
// return ErrSkipped when delivery is not possible on this machine, which the
// fan-out reports separately from failures.
//
// Built-in channels wrap the email, telegram and desktop services; the ntfy
// channel is enabled only when a topic URL is configured.
package notifications
