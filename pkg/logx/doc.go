// Package logx configures homework-bot's structured logging.
//
// The bot uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (timestamp + level + short caller)
//   - File output JSON-structured
//   - A critical level that is logged without terminating the process
package logx
