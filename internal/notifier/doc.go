// Package notifier sends status messages to the configured chat.
//
// A Notifier remembers the last message it delivered and silently skips an
// identical follow-up, so a failure that repeats every poll is reported once.
// Delivery errors are logged and reported as OutcomeFailed; they never reach
// the caller as an error and never stop the poll loop.
//
// Sends go through a token-bucket limiter and, when storage is enabled, every
// attempt is journalled with a unique delivery id.
package notifier
