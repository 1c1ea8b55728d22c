// Package logging assembles the structured slog loggers used by autovideo.
//
// Console output goes to stderr in either a human readable or JSON form; when
// a log directory is configured every record is also appended to a JSON log
// file. Context helpers tag lines with the run, video and stage being
// processed. NewNop gives tests and optional wiring a logger that discards
// everything.
package logging
