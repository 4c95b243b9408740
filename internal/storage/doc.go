// Package storage provides the optional persistence layer used by the bot.
//
// It currently keeps:
//   - The poll cursor, so a restart resumes from the last watermark
//   - A journal of notification delivery attempts
package storage
